package callgraph

import (
	"sort"

	"kernelabi/internal/ir"
)

type FuncID uint32

type FuncIndex struct {
	NameToID map[string]FuncID
	IDToName []string
}

// собрать уникальные имена (определения и вызываемые), sort.Strings, раздать ID по порядку
func BuildIndex(m *ir.Module) FuncIndex {
	uniq := make(map[string]struct{}, len(m.Functions))
	for _, fn := range m.Functions {
		if fn.Name != "" {
			uniq[fn.Name] = struct{}{}
		}
		for _, call := range fn.Calls() {
			if call.Callee == nil || call.Callee.Name == "" {
				continue
			}
			uniq[call.Callee.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]FuncID, len(names))
	for i, name := range names {
		nameToID[name] = FuncID(i)
	}

	return FuncIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}
