package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant        = "_"
	configurationKeySeparatorConstant      = "."
	embeddedConfigurationParseTemplate     = "parsing embedded configuration failed: %w"
	embeddedConfigurationMergeTemplate     = "merging embedded configuration failed: %w"
	configurationFileReadTemplateConstant  = "reading configuration file failed: %w"
	configurationDecodeTemplateConstant    = "decoding configuration failed: %w"
)

// LoadedConfiguration reports metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader resolves configuration from defaults, embedded content,
// configuration files, and environment variables, in ascending precedence.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader constructs a ConfigurationLoader that searches the
// provided directories for a configuration file when no explicit path is given.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers baseline configuration content that sits
// above defaults and below configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, configurationType string) {
	loader.embeddedConfiguration = content
	loader.embeddedConfigurationType = configurationType
}

// LoadConfiguration resolves configuration into target and reports which
// configuration file, if any, contributed values.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedViperInstance := viper.New()
		embeddedViperInstance.SetConfigType(loader.embeddedConfigurationType)
		if parseError := embeddedViperInstance.ReadConfig(bytes.NewReader(loader.embeddedConfiguration)); parseError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationParseTemplate, parseError)
		}
		if mergeError := viperInstance.MergeConfigMap(embeddedViperInstance.AllSettings()); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeTemplate, mergeError)
		}
	}

	if len(strings.TrimSpace(configurationFilePath)) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadTemplateConstant, readError)
		}
	} else {
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if readError := viperInstance.MergeInConfig(); readError != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(readError, &configFileNotFoundError) {
				return LoadedConfiguration{}, fmt.Errorf(configurationFileReadTemplateConstant, readError)
			}
		}
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	// Duration values arrive as strings such as "30s" from files and environment variables.
	decodeHook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if decodeError := viperInstance.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
