package generators

const (
	ColorReset   = "\033[0m"
	ColorUser    = "\033[36m"
	ColorTool    = "\033[33m"
	ColorSystem  = "\033[35m"
	ColorLog     = "\033[90m"
	ColorThought = "\033[2m"
)
