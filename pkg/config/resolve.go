package config

import (
	"fmt"
	"net"
	"net/url"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"mercator-hq/loupe/pkg/format"
	"mercator-hq/loupe/pkg/telemetry/logging"
)

// Destination returns the parsed destination URL. The configuration must
// have passed Validate.
func (c ProxyConfig) Destination() (*url.URL, error) {
	return ParseDestination(c.DestinationURL)
}

// Style returns the parsed print style.
func (c LoggingConfig) Style() (format.PrintStyle, error) {
	return format.ParsePrintStyle(c.PrintStyle)
}

// FormatOptions builds the immutable presentation options handed to the
// proxy handler.
func (c LoggingConfig) FormatOptions() (format.Options, error) {
	style, err := c.Style()
	if err != nil {
		return format.Options{}, err
	}

	opts := format.NewOptions(style)
	if c.PrettyFields != nil {
		opts.PrettyFields = *c.PrettyFields
	}
	opts.DecodeGzip = c.DecodeGzip
	opts.MaxBodyBytes = c.MaxBodyBytes
	opts.RedactHeaders = append([]string(nil), c.RedactHeaders...)

	return opts, nil
}

// LoggerConfig builds the logging.Config for the process logger. The
// operational format follows the print style unless set explicitly.
func (c LoggingConfig) LoggerConfig() logging.Config {
	logFormat := c.Format
	if logFormat == "" {
		logFormat = string(logging.FormatText)
		if style, err := c.Style(); err == nil && style.Structured() {
			logFormat = string(logging.FormatJSON)
		}
	}

	return logging.Config{
		Level:     c.Level,
		Format:    logFormat,
		AddSource: c.AddSource,
	}
}

// asciiHost converts an internationalized host name to its ASCII (punycode)
// form. IP literals and plain ASCII names are returned unchanged.
func asciiHost(host string) (string, error) {
	if net.ParseIP(host) != nil || isASCII(host) {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("cannot convert %q to ASCII: %w", host, err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
