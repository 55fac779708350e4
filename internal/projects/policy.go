package projects

// HiddenProjectsStillContribute pins the visibility policy: a project flagged
// hidden is excluded from public listings but keeps counting toward global
// impact totals. Only soft deletion retracts contributions. Confirmed
// behavior, not an accident of query filters; tests assert it.
const HiddenProjectsStillContribute = true
