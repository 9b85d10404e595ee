package models

// Registry lists every record type persisted in the local store.
//
// It is maintained so that operations that affect all collections do not need to explicitly iterate over every single
// model, increasing the risk of forgetting something when adding a new one.
var Registry = []any{
	&BudgetMetadata{},
	&Envelope{},
	&Transaction{},
	&Bill{},
	&SavingsGoal{},
	&PaycheckHistory{},
	&Debt{},
	&AuditLogEntry{},
	&CacheEntry{},
	&BudgetCommit{},
}
