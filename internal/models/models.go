package models

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Profile{},
		&Creator{},
		&GeneratedPost{},
		&ScheduleConfig{},
		&ScheduleExecution{},
		&ErrorLog{},
	}
}
