// Package page models one loaded HTML page in a browser tab: its location,
// an id index over the parsed document, click and keydown dispatch, and the
// tab's session storage. It implements domain.PageContext.
package page
