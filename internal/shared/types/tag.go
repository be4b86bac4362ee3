package types

// Tag is a node of the backend tag tree.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ParentID    *int64 `json:"parentId,omitempty"`
	Path        string `json:"path,omitempty"`
	QuickAccess bool   `json:"quickAccess"`
	BindFile    bool   `json:"bindFile"`
	FileCount   int64  `json:"fileCount"`
	Children    []Tag  `json:"children,omitempty"`
}

// FileTags is the body for replacing the tags bound to a file.
type FileTags struct {
	TagIDs   []int64 `json:"tagIds"`
	FileHash string  `json:"fileHash,omitempty"`
}

// TaskStatus is the lifecycle state of a backend task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
	TaskCancelled TaskStatus = "CANCELLED"
)

// Finished reports whether the task has reached a terminal state.
func (s TaskStatus) Finished() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// Task is an asynchronous backend job started by an operation.
type Task struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	TypeDesc   string     `json:"typeDesc"`
	Status     TaskStatus `json:"status"`
	Progress   int        `json:"progress"`
	Message    string     `json:"message"`
	Desc       string     `json:"desc"`
	CreateTime int64      `json:"createTime"`
	BeginTime  int64      `json:"beginTime"`
	EndTime    int64      `json:"endTime"`
}
