// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources. A field takes the value
// of the first source that sets it:
//  1. Environment variables (SF_ prefix)
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the raw merged values
// and [GetClientConfig] for the typed view the client runs on.
package config
