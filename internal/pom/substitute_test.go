package pom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinji-kodama/mergepom/internal/model"
)

// TestReplaceVersion covers the literal replacement rules.
func TestReplaceVersion(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		text string
		want string
	}{
		{
			name: "wrapped version is replaced",
			old:  "1.0",
			new:  "2.0",
			text: "<commonAppVersion>1.0</commonAppVersion>",
			want: "<commonAppVersion>2.0</commonAppVersion>",
		},
		{
			name: "bare occurrences are untouched",
			old:  "1.0",
			new:  "2.0",
			text: "<?xml version=\"1.0\"?>\n<project><version>1.0</version><properties><commonAppVersion>1.0</commonAppVersion></properties></project>",
			want: "<?xml version=\"1.0\"?>\n<project><version>1.0</version><properties><commonAppVersion>2.0</commonAppVersion></properties></project>",
		},
		{
			name: "every wrapped occurrence is replaced",
			old:  "1.0",
			new:  "1.1",
			text: "<commonAppVersion>1.0</commonAppVersion>\n<commonAppVersion>1.0</commonAppVersion>",
			want: "<commonAppVersion>1.1</commonAppVersion>\n<commonAppVersion>1.1</commonAppVersion>",
		},
		{
			name: "absent old version is a no-op",
			old:  "3.0",
			new:  "4.0",
			text: "<commonAppVersion>1.0</commonAppVersion>",
			want: "<commonAppVersion>1.0</commonAppVersion>",
		},
		{
			name: "partial match is not replaced",
			old:  "1.0",
			new:  "2.0",
			text: "<commonAppVersion>1.0.1</commonAppVersion>",
			want: "<commonAppVersion>1.0.1</commonAppVersion>",
		},
		{
			name: "regex metacharacters are literal",
			old:  "1.+",
			new:  "2.0",
			text: "<commonAppVersion>1.5</commonAppVersion><commonAppVersion>1.+</commonAppVersion>",
			want: "<commonAppVersion>1.5</commonAppVersion><commonAppVersion>2.0</commonAppVersion>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplaceVersion(model.Version(tt.old), model.Version(tt.new), tt.text, DefaultVersionElement)
			assert.Equal(t, tt.want, got)
		})
	}
}
