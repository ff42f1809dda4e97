package browser

import (
	"strings"
	"testing"
)

func TestCleanSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantHTML  []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
	}{
		{
			name: "scripts and styles removed",
			input: `<html>
				<head>
					<title>Login</title>
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body><h1 id="main">Sign in</h1><!-- secret --></body>
			</html>`,
			wantTitle: "Login",
			wantHTML:  []string{`<h1 id="main">Sign in</h1>`, "<title>Login</title>"},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red", "secret"},
		},
		{
			name:     "event handlers and javascript urls dropped",
			input:    `<html><body><a href="javascript:void(0)" class="btn" onclick="steal()">Go</a><img src="/logo.png" onerror="x()"></body></html>`,
			wantHTML: []string{`<a class="btn">Go</a>`, `<img src="/logo.png"/>`},
			wantNot:  []string{"onclick", "steal", "onerror", "javascript:"},
		},
		{
			name:     "frames and objects removed",
			input:    `<html><body><p>keep</p><iframe src="https://ads.example"></iframe><object data="x.swf"></object></body></html>`,
			wantHTML: []string{"<p>keep</p>"},
			wantNot:  []string{"iframe", "ads.example", "object"},
		},
		{
			name:      "no title",
			input:     `<p>bare fragment</p>`,
			wantTitle: "",
			wantHTML:  []string{"<p>bare fragment</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := CleanSnapshot(tt.input)
			if err != nil {
				t.Fatalf("CleanSnapshot() error = %v", err)
			}

			if snap.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", snap.Title, tt.wantTitle)
			}
			for _, want := range tt.wantHTML {
				if !strings.Contains(snap.HTML, want) {
					t.Errorf("HTML missing %q\nGot:\n%s", want, snap.HTML)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(snap.HTML, notWant) {
					t.Errorf("HTML should not contain %q\nGot:\n%s", notWant, snap.HTML)
				}
			}
		})
	}
}
