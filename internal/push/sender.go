package push

import (
	"context"
)

// Message is a single notification delivered to many device tokens.
type Message struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Result aggregates delivery counts over every token of a Message.
type Result struct {
	SuccessCount int
	FailureCount int
}

func (r Result) add(other Result) Result {
	return Result{
		SuccessCount: r.SuccessCount + other.SuccessCount,
		FailureCount: r.FailureCount + other.FailureCount,
	}
}

type Sender interface {
	SendMulticast(ctx context.Context, msg Message) (Result, error)
}

func chunk(tokens []string, size int) [][]string {
	var chunks [][]string
	for size < len(tokens) {
		tokens, chunks = tokens[size:], append(chunks, tokens[:size:size])
	}
	if len(tokens) > 0 {
		chunks = append(chunks, tokens)
	}
	return chunks
}
