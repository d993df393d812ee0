package postgres

const (
	getContainerQuery          = `SELECT data FROM video_containers WHERE container_id = $1`
	getContainerForUpdateQuery = `SELECT data FROM video_containers WHERE container_id = $1 FOR UPDATE`
	insertContainerQuery       = `INSERT INTO video_containers (container_id, account_id, data, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5) ON CONFLICT (container_id) DO NOTHING`
	updateContainerQuery = `UPDATE video_containers SET data = $2, updated_at = $3 WHERE container_id = $1`
	deleteContainerQuery = `DELETE FROM video_containers WHERE container_id = $1`

	getTaskForUpdateQuery = `SELECT kind, task_id, payload, retry_count, execution_time_ms, created_time_ms FROM tasks
					WHERE kind = $1 AND task_id = $2 FOR UPDATE`
	insertTaskQuery = `INSERT INTO tasks (kind, task_id, payload, retry_count, execution_time_ms, created_time_ms)
					VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (kind, task_id) DO NOTHING`
	updateTaskQuery = `UPDATE tasks SET payload = $3, retry_count = $4, execution_time_ms = $5
					WHERE kind = $1 AND task_id = $2`
	deleteTaskQuery   = `DELETE FROM tasks WHERE kind = $1 AND task_id = $2`
	listDueTasksQuery = `SELECT kind, task_id, payload, retry_count, execution_time_ms, created_time_ms FROM tasks
					WHERE kind = $1 AND execution_time_ms <= $2 ORDER BY execution_time_ms LIMIT $3`
	countTasksCreatedBeforeQuery = `SELECT kind, COUNT(*) AS total FROM tasks WHERE created_time_ms < $1 GROUP BY kind`

	insertStorageFileQuery = `INSERT INTO storage_files (name, account_id, container_id, created_time_ms)
					VALUES ($1, $2, $3, $4) ON CONFLICT (name) DO NOTHING`
	deleteStorageFileQuery = `DELETE FROM storage_files WHERE name = $1`
)
