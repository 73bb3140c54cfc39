// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// AppBuildInfo carries build-time metadata injected with -ldflags.
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

// NewAppBuildInfo constructs [AppBuildInfo]. Blank values are reported as "N/A".
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		version: orNA(version),
		date:    orNA(date),
		commit:  orNA(commit),
	}
}

func (a AppBuildInfo) Version() string { return orNA(a.version) }
func (a AppBuildInfo) Date() string    { return orNA(a.date) }
func (a AppBuildInfo) Commit() string  { return orNA(a.commit) }

// Label is the one-line form shown in the UI footer.
func (a AppBuildInfo) Label() string {
	return "secure-folder " + a.Version() + " (" + a.Commit() + ", " + a.Date() + ")"
}

func orNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
