// Package taskrunner hosts the shared abstractions for building and executing
// spx playbook runs. It exposes the `Executor` interface plus helpers
// (`Factory`, `Resolve`) so CLI packages can inject playbook.Dependencies once
// and obtain a runner, while unit tests can swap in fakes. This keeps
// orchestration logic in `internal/playbook` reusable without wiring
// duplication.
package taskrunner
