// Package settings models the project-scoped workfile builder configuration.
//
// Settings are HCL files with one block per host application. Each host
// carries a workfile_builder block whose profiles map a task context (task
// names and/or task types) to two pools of build profiles: one for the
// current folder and one for folders linked from it.
package settings
