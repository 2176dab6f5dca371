// Package generation forwards prompts to the local Ollama server and drives
// the speech-to-text, document-conversion and speech-synthesis tools.
package generation

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"aigateway/backend"
	"aigateway/config"
	"aigateway/logging"
	"aigateway/manager"
	"aigateway/metrics"
	"aigateway/runner"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// Tool labels used for monitoring and metrics.
const (
	ToolWhisper   = "whisper"
	ToolPDFToText = "pdftotext"
	ToolPandoc    = "pandoc"
	ToolEcho      = "echo"
	ToolFestival  = "festival"
)

// Tools lists every tool label the service can run.
var Tools = []string{ToolWhisper, ToolPDFToText, ToolPandoc, ToolEcho, ToolFestival}

// Service implements the generation gateway operations. It keeps no state
// between calls.
type Service struct {
	ollama  *backend.Client
	cfg     config.OllamaConfig
	tools   config.ToolsConfig
	tempDir string
	runner  runner.Runner
	monitor *manager.ToolMonitor
}

// NewService creates a Service from the loaded configuration.
func NewService(cfg *config.Config, r runner.Runner, monitor *manager.ToolMonitor) *Service {
	return &Service{
		ollama:  backend.NewBackendClient(cfg.Ollama.URL, 0),
		cfg:     cfg.Ollama,
		tools:   cfg.Tools,
		tempDir: cfg.Uploads.TempDir,
		runner:  r,
		monitor: monitor,
	}
}

// run executes one tool invocation under the monitor and records its
// duration.
func (s *Service) run(ctx context.Context, tool string, cmd runner.Command) (*runner.Result, error) {
	release := s.monitor.Track(tool)
	defer release()

	start := time.Now()
	res, err := s.runner.Run(ctx, cmd)

	exit := "error"
	if err == nil && res != nil {
		exit = strconv.Itoa(res.ExitCode)
	}
	metrics.ToolRunDuration.WithLabelValues(tool, exit).Observe(time.Since(start).Seconds())

	log.WithFields(logrus.Fields{
		"tool":     tool,
		"command":  cmd.String(),
		"exit":     exit,
		"duration": time.Since(start).String(),
	}).Debug("tool finished")

	return res, err
}
