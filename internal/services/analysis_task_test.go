package services

import (
	"context"
	"testing"
	"time"
)

func TestTaskTypeConstants(t *testing.T) {
	if TaskTypeContractAnalysis != "analysis:contract" {
		t.Errorf("TaskTypeContractAnalysis = %q", TaskTypeContractAnalysis)
	}
	if TaskTypeChangeAnalysis != "analysis:change" {
		t.Errorf("TaskTypeChangeAnalysis = %q", TaskTypeChangeAnalysis)
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("Close() = %v, expected nil", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &AnalysisTask{Type: TaskTypeContractAnalysis, ContractID: 1}

	if err := queue.Enqueue(task); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueInvokesProcessor(t *testing.T) {
	queue := NewSyncQueue()
	done := make(chan *AnalysisTask, 1)
	queue.SetProcessor(func(ctx context.Context, task *AnalysisTask) error {
		done <- task
		return nil
	})

	task := &AnalysisTask{Type: TaskTypeChangeAnalysis, ChangeRequestID: 7}
	if err := queue.Enqueue(task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case got := <-done:
		if got.Type != TaskTypeChangeAnalysis || got.ChangeRequestID != 7 {
			t.Errorf("processor received %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
