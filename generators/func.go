package generators

type Func struct {
	Decl FuncDecl
	Func func(args map[string]any) (map[string]any, error)
}

type FuncDecl struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Vars   `json:"params"`
	Returns     Vars   `json:"returns"`
}

func (f FuncDecl) ToOpenAI() Tool {
	return Tool{
		Type: "function",
		Function: &FunctionDefinition{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.Params.ToOpenAI(),
		},
	}
}
