package config

import (
	"io/ioutil"
	"log"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config holds everything the tool needs for a run: where the manifests
// live, where the diagram goes, and the optional delivery targets.
type Config struct {
	ManifestDir       string           `yaml:"manifestDir"`
	OutputFile        string           `yaml:"outputFile"`
	RemoteEndpoint    string           `yaml:"remoteEndpoint"`
	Watch             bool             `yaml:"watch"`
	PrometheusMetrics PrometheusConfig `yaml:"prometheusMetrics"`
	Publish           PublishConfig    `yaml:"publish"`
}

// PrometheusConfig controls the optional metrics endpoint (watch mode only).
type PrometheusConfig struct {
	Port string `yaml:"port"`
	Path string `yaml:"path"`
}

// PublishConfig holds object storage settings for uploading diagrams.
// Provider is "aws" or "minio"; empty disables publishing.
type PublishConfig struct {
	Provider     string `yaml:"provider"`
	Region       string `yaml:"region"`
	BucketName   string `yaml:"bucketName"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"accessKey"`
	AccessSecret string `yaml:"accessSecret"`
	Prefix       string `yaml:"prefix"`
}

// ReadConfig reads info from config file
func ReadConfig(configFile string) Config {
	_, err := os.Stat(configFile)
	if err != nil {
		log.Fatal("Config file is missing: ", configFile)
	}
	fileBytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		log.Fatalln("config read error:", err)
	}
	var config Config
	err = yaml.Unmarshal(fileBytes, &config)
	if err != nil {
		log.Fatalln("config unmarshaling error:", err)
	}

	return config
}
