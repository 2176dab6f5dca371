package config

import "time"

// OllamaConfig points at the text-generation server.
type OllamaConfig struct {
	URL          string        `mapstructure:"url"`
	DefaultModel string        `mapstructure:"default_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// N8NConfig points at the workflow-automation server.
type N8NConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	APITimeout     time.Duration `mapstructure:"api_timeout"`
	ExecuteTimeout time.Duration `mapstructure:"execute_timeout"`
}

// ToolsConfig names the command-line tools and their time limits.
// A zero timeout means the tool runs until it exits.
type ToolsConfig struct {
	Whisper           string        `mapstructure:"whisper"`
	WhisperModel      string        `mapstructure:"whisper_model"`
	PDFToText         string        `mapstructure:"pdftotext"`
	Pandoc            string        `mapstructure:"pandoc"`
	Festival          string        `mapstructure:"festival"`
	Echo              string        `mapstructure:"echo"`
	TranscribeTimeout time.Duration `mapstructure:"transcribe_timeout"`
	ExtractTimeout    time.Duration `mapstructure:"extract_timeout"`
	SpeechTimeout     time.Duration `mapstructure:"speech_timeout"`
}

type UploadsConfig struct {
	MaxMemory int64  `mapstructure:"max_memory"`
	TempDir   string `mapstructure:"temp_dir"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	BasePath      string        `mapstructure:"base_path"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	Server        ServerConfig  `mapstructure:"server"`
	Ollama        OllamaConfig  `mapstructure:"ollama"`
	N8N           N8NConfig     `mapstructure:"n8n"`
	Tools         ToolsConfig   `mapstructure:"tools"`
	Uploads       UploadsConfig `mapstructure:"uploads"`
}
