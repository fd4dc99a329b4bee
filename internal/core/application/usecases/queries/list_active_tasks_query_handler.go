package queries

import (
	"context"
)

type ListActiveTasksQueryHandler struct {
	readers ReaderFactory
}

func NewListActiveTasksQueryHandler(readers ReaderFactory) ListActiveTasksQueryHandler {
	return ListActiveTasksQueryHandler{readers: readers}
}

func (h ListActiveTasksQueryHandler) Handle(
	ctx context.Context,
	query ListActiveTasksQuery,
) (ListActiveTasksQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListActiveTasksQueryResponse{}, err
	}

	repo := h.readers.Create().TaskRepository()
	tasks, err := repo.ListActive(ctx)
	if err != nil {
		return ListActiveTasksQueryResponse{}, err
	}
	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		return ListActiveTasksQueryResponse{}, err
	}

	response := ListActiveTasksQueryResponse{
		Tasks:  make([]TaskView, 0, len(tasks)),
		Counts: make(map[string]int, len(counts)),
	}
	for _, t := range tasks {
		response.Tasks = append(response.Tasks, newTaskView(t))
	}
	for status, n := range counts {
		response.Counts[status.String()] = n
	}
	return response, nil
}
