// Package templates holds the templ components of the web GUI. The *_templ.go
// files are generated from the .templ sources with `go tool templ generate`.
package templates
