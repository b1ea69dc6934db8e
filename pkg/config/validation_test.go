package config

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		fieldName string
		wantError bool
		errMsg    string
	}{
		{
			name:      "valid https url",
			url:       "https://api.us2.encephalon.ai",
			fieldName: "API URL",
			wantError: false,
		},
		{
			name:      "valid http url",
			url:       "http://localhost:8080",
			fieldName: "API URL",
			wantError: false,
		},
		{
			name:      "empty url",
			url:       "",
			fieldName: "API URL",
			wantError: true,
			errMsg:    "cannot be empty",
		},
		{
			name:      "no scheme",
			url:       "api.us2.encephalon.ai",
			fieldName: "API URL",
			wantError: true,
			errMsg:    "must include a scheme",
		},
		{
			name:      "scheme only",
			url:       "https://",
			fieldName: "API URL",
			wantError: true,
			errMsg:    "must include a host",
		},
		{
			name:      "invalid url",
			url:       "ht!tp://invalid",
			fieldName: "URL",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.fieldName)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateURL() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateURL() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateURL() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestParseMaxUploadSize(t *testing.T) {
	tests := []struct {
		name      string
		sizeStr   string
		want      int64
		wantError bool
	}{
		{
			name:    "megabytes",
			sizeStr: "500MB",
			// FromHumanSize uses decimal (1000) not binary (1024)
			want:      500 * 1000 * 1000,
			wantError: false,
		},
		{
			name:      "gigabytes",
			sizeStr:   "2GB",
			want:      2 * 1000 * 1000 * 1000,
			wantError: false,
		},
		{
			name:      "plain bytes",
			sizeStr:   "1024",
			want:      1024,
			wantError: false,
		},
		{
			name:      "garbage",
			sizeStr:   "lots",
			wantError: true,
		},
		{
			name:      "empty",
			sizeStr:   "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaxUploadSize(tt.sizeStr)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseMaxUploadSize() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseMaxUploadSize() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMaxUploadSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	if err := ValidateToken("tok-123", "api token"); err != nil {
		t.Errorf("ValidateToken() unexpected error = %v", err)
	}

	err := ValidateToken("", "api token")
	if err == nil {
		t.Error("ValidateToken() expected error for empty token")
	} else if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("ValidateToken() error = %v, want error containing 'cannot be empty'", err)
	}
}

func TestValidateWorkerCount(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		wantError bool
	}{
		{name: "one worker", workers: 1, wantError: false},
		{name: "typical", workers: 4, wantError: false},
		{name: "upper bound", workers: 100, wantError: false},
		{name: "zero", workers: 0, wantError: true},
		{name: "negative", workers: -3, wantError: true},
		{name: "too many", workers: 101, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkerCount(tt.workers)
			if tt.wantError && err == nil {
				t.Errorf("ValidateWorkerCount(%d) expected error but got none", tt.workers)
			}
			if !tt.wantError && err != nil {
				t.Errorf("ValidateWorkerCount(%d) unexpected error = %v", tt.workers, err)
			}
		})
	}
}
