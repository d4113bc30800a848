package services

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError("ERROR_CODE", "Error message")

	if err.Code != "ERROR_CODE" {
		t.Errorf("Expected code 'ERROR_CODE', got '%s'", err.Code)
	}
	if err.Message != "Error message" {
		t.Errorf("Expected message 'Error message', got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"stream_id": "sensors",
		"reason":    "validation failed",
	}

	err := NewServiceErrorWithDetails("VALIDATION_ERROR", "Validation failed", details)

	if err.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code 'VALIDATION_ERROR', got '%s'", err.Code)
	}
	if err.Details["stream_id"] != "sensors" {
		t.Errorf("Expected stream_id detail 'sensors', got %v", err.Details["stream_id"])
	}
}

func TestServiceError_JSON(t *testing.T) {
	err := NewServiceErrorWithDetails("UNKNOWN_STREAM", "stream not found",
		map[string]interface{}{"stream_id": "sensors"})

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("Marshal failed: %v", marshalErr)
	}

	out := string(data)
	for _, want := range []string{`"code":"UNKNOWN_STREAM"`, `"message":"stream not found"`, `"stream_id":"sensors"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected JSON to contain %s, got %s", want, out)
		}
	}
}

func TestServiceError_JSONOmitsEmptyDetails(t *testing.T) {
	err := NewServiceError("INVALID_STREAM", "stream id must not be empty")

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("Marshal failed: %v", marshalErr)
	}
	if strings.Contains(string(data), "details") {
		t.Errorf("Expected details to be omitted, got %s", string(data))
	}
}
