package apify

import (
	"encoding/json"
	"time"
)

// PaginationList is one page of a collection.
//
// Collection endpoints return it inside the data envelope. Dataset item
// endpoints return a bare array and describe the page in response headers;
// in that case Count is the number of items received and Desc echoes the
// request, since the API does not report it.
type PaginationList[T any] struct {
	Total  uint64  `json:"total"           yaml:"total"`
	Offset uint64  `json:"offset"          yaml:"offset"`
	Limit  *uint64 `json:"limit,omitempty" yaml:"limit,omitempty"`
	Count  uint64  `json:"count"           yaml:"count"`
	Desc   bool    `json:"desc"            yaml:"desc"`
	Items  []T     `json:"items"           yaml:"items"`
}

// NoContent is the result of operations whose response body carries no data.
type NoContent struct{}

// Dataset represents an Apify dataset.
type Dataset struct {
	ID             string    `json:"id"                       yaml:"id"`
	Name           *string   `json:"name,omitempty"           yaml:"name,omitempty"`
	UserID         string    `json:"userId"                   yaml:"user_id"`
	CreatedAt      time.Time `json:"createdAt"                yaml:"created_at"`
	ModifiedAt     time.Time `json:"modifiedAt"               yaml:"modified_at"`
	AccessedAt     time.Time `json:"accessedAt"               yaml:"accessed_at"`
	ItemCount      uint64    `json:"itemCount"                yaml:"item_count"`
	CleanItemCount *uint64   `json:"cleanItemCount,omitempty" yaml:"clean_item_count,omitempty"`
	ActID          *string   `json:"actId,omitempty"          yaml:"act_id,omitempty"`
	ActRunID       *string   `json:"actRunId,omitempty"       yaml:"act_run_id,omitempty"`
}

// DatasetUpdateRequest is the body of a dataset update.
type DatasetUpdateRequest struct {
	Name string `json:"name"`
}

// RunStatus is the lifecycle state of an actor run.
type RunStatus string

// Run states reported by the platform.
const (
	RunStatusReady     RunStatus = "READY"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusTimingOut RunStatus = "TIMING-OUT"
	RunStatusTimedOut  RunStatus = "TIMED-OUT"
	RunStatusAborting  RunStatus = "ABORTING"
	RunStatusAborted   RunStatus = "ABORTED"
)

// IsTerminal reports whether the run has finished.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusTimedOut, RunStatusAborted:
		return true
	default:
		return false
	}
}

// Run represents a single actor run.
type Run struct {
	ID                      string             `json:"id"                                yaml:"id"`
	ActID                   string             `json:"actId"                             yaml:"act_id"`
	UserID                  string             `json:"userId"                            yaml:"user_id"`
	ActorTaskID             *string            `json:"actorTaskId,omitempty"             yaml:"actor_task_id,omitempty"`
	StartedAt               time.Time          `json:"startedAt"                         yaml:"started_at"`
	FinishedAt              *time.Time         `json:"finishedAt,omitempty"              yaml:"finished_at,omitempty"`
	Status                  RunStatus          `json:"status"                            yaml:"status"`
	StatusMessage           *string            `json:"statusMessage,omitempty"           yaml:"status_message,omitempty"`
	IsStatusMessageTerminal *bool              `json:"isStatusMessageTerminal,omitempty" yaml:"is_status_message_terminal,omitempty"`
	Meta                    RunMeta            `json:"meta"                              yaml:"meta"`
	Stats                   RunStats           `json:"stats"                             yaml:"stats"`
	Options                 RunOptions         `json:"options"                           yaml:"options"`
	BuildID                 string             `json:"buildId"                           yaml:"build_id"`
	ExitCode                *int               `json:"exitCode,omitempty"                yaml:"exit_code,omitempty"`
	DefaultKeyValueStoreID  string             `json:"defaultKeyValueStoreId"            yaml:"default_key_value_store_id"`
	DefaultDatasetID        string             `json:"defaultDatasetId"                  yaml:"default_dataset_id"`
	DefaultRequestQueueID   string             `json:"defaultRequestQueueId"             yaml:"default_request_queue_id"`
	BuildNumber             string             `json:"buildNumber"                       yaml:"build_number"`
	ContainerURL            string             `json:"containerUrl"                      yaml:"container_url"`
	IsContainerServerReady  *bool              `json:"isContainerServerReady,omitempty"  yaml:"is_container_server_ready,omitempty"`
	GitBranchName           *string            `json:"gitBranchName,omitempty"           yaml:"git_branch_name,omitempty"`
	Usage                   map[string]float64 `json:"usage,omitempty"                   yaml:"usage,omitempty"`
	UsageTotalUSD           float64            `json:"usageTotalUsd"                     yaml:"usage_total_usd"`
	UsageUSD                map[string]float64 `json:"usageUsd,omitempty"                yaml:"usage_usd,omitempty"`
}

// RunMeta describes how a run was started. ClientIP is only present for runs
// started through the API.
type RunMeta struct {
	Origin    string  `json:"origin"             yaml:"origin"`
	ClientIP  *string `json:"clientIp,omitempty" yaml:"client_ip,omitempty"`
	UserAgent string  `json:"userAgent"          yaml:"user_agent"`
}

// RunStats holds resource consumption of a run.
type RunStats struct {
	InputBodyLen    uint64  `json:"inputBodyLen"    yaml:"input_body_len"`
	RebootCount     uint32  `json:"rebootCount"     yaml:"reboot_count"`
	RestartCount    uint32  `json:"restartCount"    yaml:"restart_count"`
	DurationMillis  uint64  `json:"durationMillis"  yaml:"duration_millis"`
	ResurrectCount  uint32  `json:"resurrectCount"  yaml:"resurrect_count"`
	MemAvgBytes     float64 `json:"memAvgBytes"     yaml:"mem_avg_bytes"`
	MemMaxBytes     uint64  `json:"memMaxBytes"     yaml:"mem_max_bytes"`
	MemCurrentBytes uint64  `json:"memCurrentBytes" yaml:"mem_current_bytes"`
	CPUAvgUsage     float64 `json:"cpuAvgUsage"     yaml:"cpu_avg_usage"`
	CPUMaxUsage     float64 `json:"cpuMaxUsage"     yaml:"cpu_max_usage"`
	CPUCurrentUsage float64 `json:"cpuCurrentUsage" yaml:"cpu_current_usage"`
	NetRxBytes      uint64  `json:"netRxBytes"      yaml:"net_rx_bytes"`
	NetTxBytes      uint64  `json:"netTxBytes"      yaml:"net_tx_bytes"`
	RunTimeSecs     float64 `json:"runTimeSecs"     yaml:"run_time_secs"`
	Metamorph       uint64  `json:"metamorph"       yaml:"metamorph"`
	ComputeUnits    float64 `json:"computeUnits"    yaml:"compute_units"`
}

// RunOptions holds the options a run was started with.
type RunOptions struct {
	Build        string `json:"build"        yaml:"build"`
	TimeoutSecs  uint64 `json:"timeoutSecs"  yaml:"timeout_secs"`
	MemoryMbytes uint32 `json:"memoryMbytes" yaml:"memory_mbytes"`
	DiskMbytes   uint32 `json:"diskMbytes"   yaml:"disk_mbytes"`
}

// KeyValueStore represents an Apify key-value store.
type KeyValueStore struct {
	ID         string    `json:"id"                 yaml:"id"`
	Name       *string   `json:"name,omitempty"     yaml:"name,omitempty"`
	UserID     string    `json:"userId"             yaml:"user_id"`
	CreatedAt  time.Time `json:"createdAt"          yaml:"created_at"`
	ModifiedAt time.Time `json:"modifiedAt"         yaml:"modified_at"`
	AccessedAt time.Time `json:"accessedAt"         yaml:"accessed_at"`
	ActID      *string   `json:"actId,omitempty"    yaml:"act_id,omitempty"`
	ActRunID   *string   `json:"actRunId,omitempty" yaml:"act_run_id,omitempty"`
}

// KeyValueStoreUpdateRequest is the body of a key-value store update.
type KeyValueStoreUpdateRequest struct {
	Name string `json:"name"`
}

// KeyValueStoreKey describes one stored record without its value.
type KeyValueStoreKey struct {
	Key  string `json:"key"  yaml:"key"`
	Size uint64 `json:"size" yaml:"size"`
}

// KeyValueStoreKeys is one page of record keys. Pages are chained by key, not by offset.
type KeyValueStoreKeys struct {
	Items                 []KeyValueStoreKey `json:"items"                           yaml:"items"`
	Count                 uint64             `json:"count"                           yaml:"count"`
	Limit                 uint64             `json:"limit"                           yaml:"limit"`
	ExclusiveStartKey     *string            `json:"exclusiveStartKey,omitempty"     yaml:"exclusive_start_key,omitempty"`
	IsTruncated           bool               `json:"isTruncated"                     yaml:"is_truncated"`
	NextExclusiveStartKey *string            `json:"nextExclusiveStartKey,omitempty" yaml:"next_exclusive_start_key,omitempty"`
}

// Record is a single key-value store entry. Value holds the raw bytes as stored.
type Record struct {
	Key         string `json:"key"          yaml:"key"`
	Value       []byte `json:"value"        yaml:"value"`
	ContentType string `json:"content_type" yaml:"content_type"`
}

// JSON decodes the record value into v.
func (r *Record) JSON(v any) error {
	err := json.Unmarshal(r.Value, v)
	if err != nil {
		return &ParseError{Err: err}
	}

	return nil
}
