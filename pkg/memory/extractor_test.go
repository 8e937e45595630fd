package memory

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "new user introduction",
			text: "I am learning Rust and I like hiking",
			want: []string{"learning", "rust", "like", "hiking"},
		},
		{
			name: "stopwords and short words dropped",
			text: "the cat sat on a mat",
			want: nil,
		},
		{
			name: "punctuation stripped",
			text: "Kubernetes, Docker... and Terraform!",
			want: []string{"kubernetes", "docker", "terraform"},
		},
		{
			name: "duplicates keep first appearance",
			text: "golang golang GOLANG testing golang",
			want: []string{"golang", "testing"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "mixed case normalized",
			text: "Learning PYTHON and JavaScript",
			want: []string{"learning", "python", "javascript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTopics(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTopicsCap(t *testing.T) {
	words := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, fmt.Sprintf("topic%02d", i))
	}
	got := ExtractTopics(strings.Join(words, " "))
	if len(got) != maxExtractedTopics {
		t.Errorf("extracted %d topics, want cap %d", len(got), maxExtractedTopics)
	}
}

func TestExtractTopicsDeterministic(t *testing.T) {
	text := "deploying microservices with kubernetes and monitoring with prometheus"
	first := ExtractTopics(text)
	second := ExtractTopics(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic: %v vs %v", first, second)
	}
}
