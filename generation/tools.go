package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"aigateway/apierror"
	"aigateway/runner"
	"aigateway/tempfile"
)

// SpeechGenerated is the acknowledgement returned by Speak's HTTP route.
const SpeechGenerated = "Speech generated successfully"

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Transcribe runs whisper on the uploaded audio and returns the trimmed
// transcript. The upload and whisper's .txt output are removed before
// returning, whatever the outcome.
func (s *Service) Transcribe(ctx context.Context, up Upload) (string, error) {
	audio, err := tempfile.Create(s.tempDir, "transcribe-", tempfile.Ext(up.Filename), up.Content)
	if err != nil {
		return "", apierror.Internal(err)
	}
	defer removeTemp(audio)

	txtPath := audio.Sibling(".txt")

	// whisper writes <name>.txt into its working directory, so running it
	// from the upload's directory puts the transcript next to the upload.
	res, err := s.run(ctx, ToolWhisper, runner.Command{
		Name:    s.tools.Whisper,
		Args:    []string{audio.Path, "--model", s.tools.WhisperModel, "--output_format", "txt"},
		Dir:     audio.Dir(),
		Timeout: s.tools.TranscribeTimeout,
	})
	if err != nil {
		if errors.Is(err, runner.ErrTimeout) {
			return "", apierror.Timeout("Transcription timeout", err)
		}
		return "", apierror.Upstream("Whisper transcription failed", err.Error())
	}
	if !res.Success() {
		return "", apierror.Upstream("Whisper transcription failed", res.Stderr)
	}

	text, err := os.ReadFile(txtPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apierror.Upstream("Transcription file not found", "")
		}
		return "", apierror.Internal(err)
	}

	return strings.TrimSpace(string(text)), nil
}

// extractor is the tool and failure message used for one document type.
type extractor struct {
	tool    string
	failure string
	command func(s *Service, path string) runner.Command
}

var extractors = map[string]extractor{
	".pdf": {
		tool:    ToolPDFToText,
		failure: "PDF text extraction failed",
		command: func(s *Service, path string) runner.Command {
			return runner.Command{Name: s.tools.PDFToText, Args: []string{path, "-"}}
		},
	},
	".docx": {
		tool:    ToolPandoc,
		failure: "DOCX text extraction failed",
		command: func(s *Service, path string) runner.Command {
			return runner.Command{Name: s.tools.Pandoc, Args: []string{path, "-t", "plain"}}
		},
	},
}

// SupportedDocument reports whether filename has an extension Extract can
// handle, and returns that extension lower-cased.
func SupportedDocument(filename string) (string, bool) {
	ext := strings.ToLower(tempfile.Ext(filename))
	_, ok := extractors[ext]
	return ext, ok
}

// Extract converts a PDF or DOCX upload to plain text. Other extensions are
// rejected before anything touches the disk.
func (s *Service) Extract(ctx context.Context, up Upload) (string, error) {
	ext, ok := SupportedDocument(up.Filename)
	if !ok {
		return "", apierror.ClientInput(fmt.Sprintf("Unsupported file format: %s", ext))
	}
	ex := extractors[ext]

	doc, err := tempfile.Create(s.tempDir, "extract-", ext, up.Content)
	if err != nil {
		return "", apierror.Internal(err)
	}
	defer removeTemp(doc)

	cmd := ex.command(s, doc.Path)
	cmd.Timeout = s.tools.ExtractTimeout

	res, err := s.run(ctx, ex.tool, cmd)
	if err != nil {
		return "", apierror.Upstream(ex.failure, err.Error())
	}
	if !res.Success() {
		return "", apierror.Upstream(ex.failure, res.Stderr)
	}

	return strings.TrimSpace(res.Stdout), nil
}

// Speak plays text through festival.
//
// The echo run and the .wav placeholder do nothing useful: festival reads the
// request text from stdin and plays it on the host, it never writes the
// file. Both are kept so deployments see the same process activity as
// before.
func (s *Service) Speak(ctx context.Context, text string) error {
	wav, err := tempfile.Create(s.tempDir, "speech-", ".wav", nil)
	if err != nil {
		return apierror.Internal(err)
	}
	defer removeTemp(wav)

	res, err := s.run(ctx, ToolEcho, runner.Command{
		Name:    s.tools.Echo,
		Args:    []string{text},
		Timeout: s.tools.SpeechTimeout,
	})
	if err != nil {
		return apierror.Upstream("Text processing failed", err.Error())
	}
	if !res.Success() {
		return apierror.Upstream("Text processing failed", "")
	}

	res, err = s.run(ctx, ToolFestival, runner.Command{
		Name:    s.tools.Festival,
		Args:    []string{"--tts"},
		Stdin:   text,
		Timeout: s.tools.SpeechTimeout,
	})
	if err != nil {
		return apierror.Upstream("Festival TTS failed", err.Error())
	}
	if !res.Success() {
		return apierror.Upstream("Festival TTS failed", res.Stderr)
	}

	return nil
}

func removeTemp(f *tempfile.File) {
	if err := f.Remove(); err != nil {
		log.Warnf("failed to remove temp file %s: %v", f.Path, err)
	}
}
