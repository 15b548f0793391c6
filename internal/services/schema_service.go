package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"library-loader/internal/logging"
	"library-loader/internal/models"
)

type SchemaService struct {
	db *Database
}

func NewSchemaService(db *Database) *SchemaService {
	return &SchemaService{db: db}
}

// Dependencies levels tables by their foreign keys: a table's level is one
// more than the highest level it references. References to tables outside
// the set are assumed to exist already. The result is sorted by level and
// keeps declaration order within a level.
func Dependencies(tables []models.Table) ([]models.TableDependency, error) {
	depMap := make(map[string]*models.TableDependency, len(tables))
	position := make(map[string]int, len(tables))
	for i, table := range tables {
		if _, dup := depMap[table.Name]; dup {
			return nil, fmt.Errorf("%w: table %s declared twice", ErrSchema, table.Name)
		}
		depMap[table.Name] = &models.TableDependency{
			TableName: table.Name,
			DependsOn: table.References(),
		}
		position[table.Name] = i
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var calculateLevel func(table string, path []string) (int, error)
	calculateLevel = func(table string, path []string) (int, error) {
		if recStack[table] {
			return 0, fmt.Errorf("%w: circular foreign keys: %s", ErrSchema,
				strings.Join(append(path, table), " -> "))
		}

		if visited[table] {
			return depMap[table].Level, nil
		}

		recStack[table] = true

		dep := depMap[table]
		maxDepLevel := 0

		// Level = max(dependency levels) + 1
		for _, depTable := range dep.DependsOn {
			if _, exists := depMap[depTable]; !exists {
				continue
			}

			depLevel, err := calculateLevel(depTable, append(path, table))
			if err != nil {
				return 0, err
			}
			if depLevel >= maxDepLevel {
				maxDepLevel = depLevel + 1
			}
		}

		recStack[table] = false
		visited[table] = true
		dep.Level = maxDepLevel

		return maxDepLevel, nil
	}

	for _, table := range tables {
		if _, err := calculateLevel(table.Name, nil); err != nil {
			return nil, err
		}
	}

	result := make([]models.TableDependency, 0, len(tables))
	for _, table := range tables {
		result = append(result, *depMap[table.Name])
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Level != result[j].Level {
			return result[i].Level < result[j].Level
		}
		return position[result[i].TableName] < position[result[j].TableName]
	})

	return result, nil
}

// CreationOrder returns tables reordered so every referenced table comes
// before the tables that reference it.
func CreationOrder(tables []models.Table) ([]models.Table, error) {
	deps, err := Dependencies(tables)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Table, len(tables))
	for _, table := range tables {
		byName[table.Name] = table
	}

	ordered := make([]models.Table, len(deps))
	for i, dep := range deps {
		ordered[i] = byName[dep.TableName]
	}
	return ordered, nil
}

// Recreate drops every table in reverse dependency order and creates them
// again in forward order. It returns the creation order.
func (s *SchemaService) Recreate(ctx context.Context, tables []models.Table) ([]models.Table, error) {
	logger := logging.FromContext(ctx)

	ordered, err := CreationOrder(tables)
	if err != nil {
		return nil, err
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		logger.Info("dropping table", "table", ordered[i].Name)
		if err := s.db.DropTable(ctx, ordered[i].Name); err != nil {
			return nil, err
		}
	}

	for _, table := range ordered {
		if refs := table.References(); len(refs) > 0 {
			logger.Info("creating table", "table", table.Name, "depends_on", refs)
		} else {
			logger.Info("creating table", "table", table.Name)
		}
		if err := s.db.CreateTable(ctx, table); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
