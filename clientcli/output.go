package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatSign(w io.Writer, result *SignResult) error
	FormatVerify(w io.Writer, result *VerifyResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatSign prints the method and URL, then the headers and body size.
// In quiet mode only the URL is printed.
func (f *HumanFormatter) FormatSign(w io.Writer, result *SignResult) error {
	req := &result.Request
	if f.Quiet {
		_, _ = fmt.Fprintln(w, req.URL)
		return nil
	}

	source := "locally"
	if result.Remote {
		source = "by service"
	}
	_, _ = fmt.Fprintf(w, "Signed %s event %s\n", result.Kind, source)
	_, _ = fmt.Fprintf(w, "  %s %s\n", req.Method, req.URL)
	for _, h := range req.Headers {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", h.Name, h.Value)
	}
	_, _ = fmt.Fprintf(w, "  Body: %s\n", formatSize(int64(len(req.Body))))
	if result.SpoolPath != "" {
		_, _ = fmt.Fprintf(w, "  Spooled: %s\n", result.SpoolPath)
	}
	return nil
}

// FormatVerify prints the verification outcome. A failed check is printed
// even in quiet mode.
func (f *HumanFormatter) FormatVerify(w io.Writer, result *VerifyResult) error {
	if result.Valid {
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Valid: %s\n", result.URL)
		}
		return nil
	}
	_, _ = fmt.Fprintf(w, "Invalid: %s - %v\n", result.URL, result.Err)
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4   // "NAME"
	maxBucketLen := 6 // "BUCKET"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxBucketLen = max(maxBucketLen, len(profiles[i].Bucket))
	}
	maxNameLen = min(maxNameLen, 20)
	maxBucketLen = min(maxBucketLen, 40)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-14s  %s\n", maxNameLen, "NAME", maxBucketLen, "BUCKET", "REGION", "ACCESS KEY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		strings.Repeat("-", maxNameLen), strings.Repeat("-", maxBucketLen), strings.Repeat("-", 14), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-14s  %s\n",
			marker,
			maxNameLen, truncate(p.Name, maxNameLen),
			maxBucketLen, truncate(p.Bucket, maxBucketLen),
			p.Region,
			maskSecret(p.AccessKey, showSecrets),
		)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:          %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Bucket:        %s\n", orNotSet(profile.Bucket))
	_, _ = fmt.Fprintf(w, "Region:        %s\n", orNotSet(profile.Region))
	_, _ = fmt.Fprintf(w, "Key Prefix:    %s\n", orNotSet(profile.KeyPrefix))
	_, _ = fmt.Fprintf(w, "Access Key:    %s\n", maskSecret(profile.AccessKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Secret Key:    %s\n", maskSecret(profile.SecretKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Session Token: %s\n", maskSecret(profile.SessionToken, showSecrets))
	if profile.AWSProfile != "" {
		_, _ = fmt.Fprintf(w, "AWS Profile:   %s\n", profile.AWSProfile)
	}
	if profile.Endpoint != "" {
		_, _ = fmt.Fprintf(w, "Endpoint:      %s\n", profile.Endpoint)
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatSign formats a signed request as JSON.
func (f *JSONFormatter) FormatSign(w io.Writer, result *SignResult) error {
	return writeJSON(w, result)
}

// FormatVerify formats the verification outcome as JSON.
func (f *JSONFormatter) FormatVerify(w io.Writer, result *VerifyResult) error {
	output := struct {
		URL   string `json:"url"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}{
		URL:   result.URL,
		Valid: result.Valid,
	}
	if result.Err != nil {
		output.Error = result.Err.Error()
	}
	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

type jsonProfile struct {
	Name         string `json:"name"`
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	KeyPrefix    string `json:"key_prefix,omitempty"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	SessionToken string `json:"session_token,omitempty"`
	AWSProfile   string `json:"aws_profile,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	Default      bool   `json:"default"`
}

func newJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	jp := jsonProfile{
		Name:       p.Name,
		Bucket:     p.Bucket,
		Region:     p.Region,
		KeyPrefix:  p.KeyPrefix,
		AWSProfile: p.AWSProfile,
		Endpoint:   p.Endpoint,
		Default:    isDefault,
		AccessKey:  maskSecret(p.AccessKey, showSecrets),
		SecretKey:  maskSecret(p.SecretKey, showSecrets),
	}
	if p.SessionToken != "" {
		jp.SessionToken = maskSecret(p.SessionToken, showSecrets)
	}
	return jp
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = newJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(&profile, isDefault, showSecrets))
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
