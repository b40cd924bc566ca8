package dashboard

// concurrent.go: fetches en paralelo para los pollers que piden varias
// listas independientes (comunidad). Cada tarea escribe su propio resultado
// en el store; aquí solo se espera y se recoge si fue bien.

import (
	"context"
	"log/slog"
	"sync"
)

// fetchTask hace un fetch y devuelve true si vino del backend.
type fetchTask func(ctx context.Context) bool

// fetchConcurrent ejecuta las tareas en paralelo y devuelve sus resultados
// en el mismo orden.
func fetchConcurrent(ctx context.Context, tasks ...fetchTask) []bool {
	results := make([]bool, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = task(ctx)
		}()
	}
	wg.Wait()

	failed := 0
	for _, ok := range results {
		if !ok {
			failed++
		}
	}
	slog.Debug("concurrent fetch complete", "tasks", len(tasks), "failed", failed)
	return results
}
