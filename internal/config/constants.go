package config

// Version is the rectype release, reported by "rectype version".
var Version = "0.1.0"

// SourceFileExtensions are all recognized source file extensions for units and spec files.
var SourceFileExtensions = []string{".yaml", ".yml"}

// ConfigFileNames are the project file names searched by FindConfig, in order.
var ConfigFileNames = []string{"rectype.yaml", "rectype.yml"}

// Reserved local names.
const (
	SelfVariable       = "this" // receiver of a method
	ConstraintVariable = "$"    // value being constrained in a where clause
)

// Default locations and settings.
const (
	DefaultStorePath = ".rectype/modules.db"
	DefaultLogLevel  = "warn"
	DefaultVersion   = "0.0.0"
)

// Built-in type names used by the front-end and for display.
const (
	VoidTypeName        = "void"
	AnyTypeName         = "any"
	ExistentialTypeName = "?"
	BoolTypeName        = "bool"
	IntTypeName         = "int"
	RealTypeName        = "real"
	StringTypeName      = "string"
)
