package qdrantDB

import (
	"errors"
	"testing"

	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMissingIndex(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Unindexed Filter Field",
			err:      status.Error(codes.InvalidArgument, "Index required but not found for \"chat_id\" of one of the following types: [keyword]"),
			expected: true,
		},
		{
			name:     "Other Invalid Argument",
			err:      status.Error(codes.InvalidArgument, "Wrong input: vector size mismatch"),
			expected: false,
		},
		{
			name:     "Unavailable",
			err:      status.Error(codes.Unavailable, "connection refused"),
			expected: false,
		},
		{
			name:     "Plain Error",
			err:      errors.New("Index required"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMissingIndex(tt.err); got != tt.expected {
				t.Errorf("isMissingIndex(%v) = %v; want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedKind  ragerrors.Kind
		expectedRetry bool
	}{
		{
			name:          "Unavailable Maps To Connection",
			err:           status.Error(codes.Unavailable, "connection refused"),
			expectedKind:  ragerrors.KindConnection,
			expectedRetry: true,
		},
		{
			name:          "Deadline Maps To Timeout",
			err:           status.Error(codes.DeadlineExceeded, "deadline exceeded"),
			expectedKind:  ragerrors.KindTimeout,
			expectedRetry: true,
		},
		{
			name:          "Resource Exhausted Maps To Rate Limit",
			err:           status.Error(codes.ResourceExhausted, "too many requests"),
			expectedKind:  ragerrors.KindRateLimit,
			expectedRetry: true,
		},
		{
			name:          "Other Codes Stay Vector Store",
			err:           status.Error(codes.Internal, "wal write failed"),
			expectedKind:  ragerrors.KindVectorStore,
			expectedRetry: false,
		},
		{
			name:          "Non Grpc Error Stays Vector Store",
			err:           errors.New("boom"),
			expectedKind:  ragerrors.KindVectorStore,
			expectedRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, "search failed")
			if kind := ragerrors.KindOf(got); kind != tt.expectedKind {
				t.Errorf("classify kind = %v; want %v", kind, tt.expectedKind)
			}
			if retry := ragerrors.IsRetryable(got); retry != tt.expectedRetry {
				t.Errorf("classify retryable = %v; want %v", retry, tt.expectedRetry)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classify should keep the cause in the chain")
			}
		})
	}
}

func TestStructToMap(t *testing.T) {
	if structToMap(nil) != nil {
		t.Error("Nil struct should map to nil")
	}

	s := &qdrant.Struct{Fields: map[string]*qdrant.Value{
		"page":   {Kind: &qdrant.Value_IntegerValue{IntegerValue: 3}},
		"source": {Kind: &qdrant.Value_StringValue{StringValue: "handbook.pdf"}},
		"draft":  {Kind: &qdrant.Value_BoolValue{BoolValue: false}},
	}}

	got := structToMap(s)
	if len(got) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(got))
	}
	if got["page"] != int64(3) || got["source"] != "handbook.pdf" || got["draft"] != false {
		t.Errorf("Payload mapping wrong: %+v", got)
	}
}
