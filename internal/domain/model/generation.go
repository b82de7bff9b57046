package model

// GenerationRequest is the payload accepted by the video generation provider.
type GenerationRequest struct {
	Prompt               string   `json:"prompt"`
	NegativePrompt       string   `json:"negative_prompt,omitempty"`
	Width                int      `json:"width"`
	Height               int      `json:"height"`
	AspectRatio          string   `json:"aspect_ratio"`
	Duration             int      `json:"duration"`
	Seed                 int64    `json:"seed,omitempty"`
	GenerationConfigName string   `json:"generation_config_name"`
	FrameRate            int      `json:"frame_rate"`
	BatchSize            int      `json:"batch_size"`
	References           []string `json:"references"`
}

type TaskStatus string

const (
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusError      TaskStatus = "error"
)

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusError
}

// Task is one unit of work inside a provider-side generation job.
type Task struct {
	Type   string     `json:"type"`
	Status TaskStatus `json:"status"`
	ID     string     `json:"id"`
}

// GenerationFile is the provider's view of a generation job. The pipeline
// treats it as an opaque polling target.
type GenerationFile struct {
	ID           string `json:"id"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Tasks        []Task `json:"tasks"`
}

// Done reports whether every constituent task reached a terminal state.
// A job with no task list is done once the provider published a result URL.
func (f *GenerationFile) Done() bool {
	if len(f.Tasks) == 0 {
		return f.URL != ""
	}
	for _, t := range f.Tasks {
		if !t.Status.Terminal() {
			return false
		}
	}
	return true
}

// Failed reports whether any task ended in error.
func (f *GenerationFile) Failed() bool {
	for _, t := range f.Tasks {
		if t.Status == TaskStatusError {
			return true
		}
	}
	return false
}

// Progress aggregates sub-task completion into a whole-job percentage.
// Only completed tasks count; errored tasks end the job without adding to
// the percentage.
func (f *GenerationFile) Progress() int {
	if len(f.Tasks) == 0 {
		if f.URL != "" {
			return 100
		}
		return 0
	}
	done := 0
	for _, t := range f.Tasks {
		if t.Status == TaskStatusCompleted {
			done++
		}
	}
	return done * 100 / len(f.Tasks)
}
