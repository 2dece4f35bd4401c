// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata stamped into the binary at link time:
//
//	go build -ldflags "-X spectrum/pkg/build.buildName=spectrum \
//	  -X spectrum/pkg/build.buildVersion=0.3.0 \
//	  -X spectrum/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X spectrum/pkg/build.buildTime=$(date -u +%FT%TZ)"
//
// Development builds carry none of these; Initialize then fills in
// placeholders and reports which flags were missing.
package build

import (
	"errors"
	"fmt"
)

const (
	defaultName        = "spectrum"
	defaultDescription = "Real-time audio spectrum analyser"
	devValue           = "dev"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        defaultName,
		Description: defaultDescription,
		Time:        devValue,
		Commit:      devValue,
		Version:     devValue,
	}
)

// Initialize copies the ldflags variables into the build info. Missing
// values are replaced by placeholders and reported together in the
// returned error, which callers may treat as a warning.
func Initialize() error {
	var errs []error
	pick := func(field string, value, fallback string) string {
		if value == "" {
			errs = append(errs, fmt.Errorf("Build%s is required", field))
			return fallback
		}
		return value
	}

	buildFlags.Name = pick("Name", buildName, defaultName)
	buildFlags.Time = pick("Time", buildTime, devValue)
	buildFlags.Commit = pick("Commit", buildCommit, devValue)
	buildFlags.Version = pick("Version", buildVersion, devValue)

	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// VersionString formats the version line printed by --version.
func VersionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", buildFlags.Version, buildFlags.Commit, buildFlags.Time)
}
