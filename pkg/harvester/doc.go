// Package harvester collects candidate wallpaper links from source listings
// with a real browser.
//
// A Session owns the browser and walks through a manual login:
// NotAuthenticated, then AwaitingManualLogin while the user signs in by hand,
// then Ready. Logged-in listings show more posts per page. Close releases the
// browser and is safe to defer immediately after NewSession.
//
// The harvested links are cached with WriteLinks so a later run can replay
// them with ReadLinks instead of opening a browser again.
package harvester
