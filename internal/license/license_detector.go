package license

import (
	"math"
	"sort"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"

	"github.com/petrarca/delphi-migrator/internal/types"
)

// MinConfidence is the lowest detection confidence that is reported
const MinConfidence = 0.9

// LicenseDetector handles file-based license detection
type LicenseDetector struct{}

// LicenseMatch represents a detected license with metadata
type LicenseMatch struct {
	License    string
	Confidence float32
	File       string
}

// NewLicenseDetector creates a new license detector
func NewLicenseDetector() *LicenseDetector {
	return &LicenseDetector{}
}

// DetectLicensesInDirectory detects licenses from LICENSE files in a directory.
// Matches at or below MinConfidence are dropped; the result is sorted by license id.
func (d *LicenseDetector) DetectLicensesInDirectory(dirPath string) []LicenseMatch {
	fs, err := filer.FromDirectory(dirPath)
	if err != nil {
		return nil
	}

	matches, err := licensedb.Detect(fs)
	if err != nil {
		// licensedb.ErrNoLicenseFound is the common case for legacy code drops
		return nil
	}

	var licenses []LicenseMatch
	for licenseID, match := range matches {
		if match.Confidence > MinConfidence {
			licenses = append(licenses, LicenseMatch{
				License:    licenseID,
				Confidence: match.Confidence,
				File:       match.File,
			})
		}
	}

	sort.Slice(licenses, func(i, j int) bool { return licenses[i].License < licenses[j].License })
	return licenses
}

// DetectLicenses returns the licenses of a legacy project directory in model form
func (d *LicenseDetector) DetectLicenses(dirPath string) []types.License {
	var licenses []types.License
	for _, match := range d.DetectLicensesInDirectory(dirPath) {
		licenses = append(licenses, types.License{
			LicenseName: match.License,
			SourceFile:  match.File,
			Confidence:  math.Round(float64(match.Confidence)*100) / 100,
		})
	}
	return licenses
}
