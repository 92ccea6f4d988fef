package main

import _ "embed"

// indexHTML is the stopwatch page template with the %RESULTS% placeholder.
//
//go:embed web/index.html
var indexHTML string

// appJS is the client-side stopwatch controller.
//
//go:embed web/app.js
var appJS string

// appCSS is the page stylesheet.
//
//go:embed web/app.css
var appCSS string
