package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/amankumarsingh77/video-containers/internal/usage"
)

func TestKafkaRecorderRecord(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	event := usage.Event{
		Type:       usage.StorageStarted,
		AccountID:  "acc-1",
		Name:       "acc-1/c-1/v1/",
		TotalBytes: 2048,
		TimeMs:     1700000000000,
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got usage.Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got != event {
			return fmt.Errorf("sent %+v, want %+v", got, event)
		}
		return nil
	})

	rec := NewKafkaRecorder(producer, "storage_usage")
	if err := rec.Record(context.Background(), event); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestKafkaRecorderRecordFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	brokerDown := errors.New("broker down")
	producer.ExpectSendMessageAndFail(brokerDown)

	rec := NewKafkaRecorder(producer, "storage_usage")
	err := rec.Record(context.Background(), usage.Event{Type: usage.StorageEnded, AccountID: "acc-1", Name: "f"})
	if !errors.Is(err, brokerDown) {
		t.Fatalf("Record error = %v, want %v", err, brokerDown)
	}
}
