package utils

import (
	"testing"
)

func TestParseModelJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ParseOutcome
		wantLen int
	}{
		{
			name:    "Pure JSON",
			input:   `{"name": "Phòng khách", "length": 5}`,
			want:    ParseDirect,
			wantLen: 2,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"totalArea": 35, "confidence": 0.9}` + "\n```",
			want:    ParseDirect,
			wantLen: 2,
		},
		{
			name:    "Unterminated fence",
			input:   "```json\n{\"totalArea\": 12}",
			want:    ParseDirect,
			wantLen: 1,
		},
		{
			name:    "JSON with surrounding text",
			input:   `Kết quả phân tích: {"status": "success", "count": 5} xong.`,
			want:    ParseSalvaged,
			wantLen: 2,
		},
		{
			name:    "JSON with trailing comma",
			input:   `{"name": "Bob", "age": 40,}`,
			want:    ParseSalvaged,
			wantLen: 2,
		},
		{
			name:    "JSON with unquoted keys",
			input:   `{name: "Alice", age: 35}`,
			want:    ParseSalvaged,
			wantLen: 2,
		},
		{
			name:  "Empty string",
			input: "",
			want:  ParseFailed,
		},
		{
			name:  "Invalid JSON",
			input: "not json at all",
			want:  ParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			outcome := ParseModelJSON(tt.input, &got)

			if outcome != tt.want {
				t.Fatalf("ParseModelJSON() outcome = %v, want %v", outcome, tt.want)
			}

			if tt.want != ParseFailed && len(got) != tt.wantLen {
				t.Errorf("ParseModelJSON() got = %v, want %d keys", got, tt.wantLen)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json tagged block",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "untagged block",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "no block",
			input: `  {"test": true} `,
			want:  `{"test": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}} trailing`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Unbalanced",
			input: `{"a": {"b": 2}`,
			open:  '{',
			close: '}',
			want:  "",
		},
		{
			name:  "Array",
			input: `[1, 2, 3]`,
			open:  '[',
			close: ']',
			want:  `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, tt.open, tt.close)
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindNumberField(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"broken JSON", `{"rooms": [ {"name": "A", "totalArea": 42.5, oops`, 42.5, true},
		{"integer", `"totalArea":35`, 35, true},
		{"missing", `{"rooms": []`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindNumberField(tt.input, "totalArea")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FindNumberField() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
