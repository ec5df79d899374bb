// Package configs embeds the configuration templates written by
// `sitesearch config init`.
//
// Configuration precedence (see internal/config Load):
//  1. Built-in defaults
//  2. User config (~/.config/sitesearch/config.yaml)
//  3. Site config (.sitesearch.yaml in the site root)
//  4. Environment variables (SITESEARCH_*)
package configs

import _ "embed"

// UserConfigTemplate is written to the user config path by
// `sitesearch config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// SiteConfigTemplate is written to .sitesearch.yaml by
// `sitesearch config init --site`.
//
//go:embed site-config.example.yaml
var SiteConfigTemplate string
