package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The API handlers use it to enqueue on-demand work (feed
// collection) alongside the periodic schedule.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueCollectAll() (int, error)
}
