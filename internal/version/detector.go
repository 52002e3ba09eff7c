// Package version resolves the application version string from build metadata.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	unknownVersionFallbackConstant    = "unknown"
	buildInfoDevelVersionValue        = "devel"
	vcsRevisionSettingKeyConstant     = "vcs.revision"
	vcsModifiedSettingKeyConstant     = "vcs.modified"
	vcsModifiedTrueValueConstant      = "true"
	dirtyRevisionTemplateConstant     = "%s-dirty"
	shortRevisionLengthConstant       = 12
	modulePseudoVersionPrefixConstant = "v0.0.0-"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
}

// NewDetector constructs a Detector with the supplied dependencies or sensible defaults.
func NewDetector(dependencies Dependencies) *Detector {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}
	return &Detector{buildInfoProvider: provider}
}

// Detect resolves the application version using the supplied dependencies.
func Detect(dependencies Dependencies) string {
	return NewDetector(dependencies).Version()
}

// Version returns the detected application version string. Module versions
// stamped by the toolchain win; otherwise the VCS revision recorded in build
// metadata is used, marked dirty when the working tree had local changes.
func (detector *Detector) Version() string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	buildInfo, available := detector.readBuildInfo()
	if !available {
		return unknownVersionFallbackConstant
	}

	if moduleVersion := moduleVersionFromBuildInfo(buildInfo); len(moduleVersion) > 0 {
		return moduleVersion
	}

	if revisionVersion := revisionFromBuildInfo(buildInfo); len(revisionVersion) > 0 {
		return revisionVersion
	}

	return unknownVersionFallbackConstant
}

func (detector *Detector) readBuildInfo() (*debug.BuildInfo, bool) {
	if detector.buildInfoProvider == nil {
		return nil, false
	}
	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return nil, false
	}
	return buildInfo, true
}

func moduleVersionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	trimmedVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(trimmedVersion) == 0 {
		return ""
	}
	if strings.EqualFold(trimmedVersion, buildInfoDevelVersionValue) {
		return ""
	}
	if strings.HasPrefix(trimmedVersion, modulePseudoVersionPrefixConstant) {
		return ""
	}
	return trimmedVersion
}

func revisionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	revision := ""
	modified := false
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case vcsRevisionSettingKeyConstant:
			revision = strings.TrimSpace(setting.Value)
		case vcsModifiedSettingKeyConstant:
			modified = setting.Value == vcsModifiedTrueValueConstant
		}
	}
	if len(revision) == 0 {
		return ""
	}
	if len(revision) > shortRevisionLengthConstant {
		revision = revision[:shortRevisionLengthConstant]
	}
	if modified {
		return fmt.Sprintf(dirtyRevisionTemplateConstant, revision)
	}
	return revision
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
