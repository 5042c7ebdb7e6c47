package metric

// Metric names, shared by the registry and the textfile output.
const (
	namespace = "yaml_enc"

	DocumentsLoadedName = namespace + "_documents_loaded_total"
	NodesResolvedName   = namespace + "_nodes_resolved_total"
	ResolveFailuresName = namespace + "_resolve_failures_total"
	IncludeDepthName    = namespace + "_include_depth"
	ResolveDurationName = namespace + "_resolve_duration_seconds"
	NodeClassesName     = namespace + "_node_classes"
	NodeParametersName  = namespace + "_node_parameters"
)

// Descriptor holds the help text of one metric.
type Descriptor struct {
	Name string
	Help string
}

// Descriptors lists every metric the registry exports.
var Descriptors = []Descriptor{
	{DocumentsLoadedName, "Number of YAML documents loaded during resolution."},
	{NodesResolvedName, "Number of nodes resolved successfully."},
	{ResolveFailuresName, "Number of node resolutions that failed."},
	{IncludeDepthName, "Longest include chain below a resolved node."},
	{ResolveDurationName, "Time taken to resolve a node, including all includes."},
	{NodeClassesName, "Number of classes assigned to a resolved node."},
	{NodeParametersName, "Number of parameters assigned to a resolved node."},
}

func help(name string) string {
	for _, d := range Descriptors {
		if d.Name == name {
			return d.Help
		}
	}
	return ""
}
