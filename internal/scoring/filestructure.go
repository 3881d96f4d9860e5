package scoring

import (
	"encoding/json"
	"sort"
	"strings"

	"github-static-scout/internal/domain"
)

// Manifest package.json 中参与判定的字段
type Manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// ParseManifest 解析 package.json
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BackendDependencies 返回命中后端词表的依赖名 (含 devDependencies)，已排序
func (m *Manifest) BackendDependencies() []string {
	if m == nil {
		return nil
	}
	var hits []string
	for _, name := range BackendDependencies {
		_, inDeps := m.Dependencies[name]
		_, inDev := m.DevDependencies[name]
		if inDeps || inDev {
			hits = append(hits, name)
		}
	}
	sort.Strings(hits)
	return hits
}

// HasBuildScript 任一脚本名包含 build/export/generate
func (m *Manifest) HasBuildScript() bool {
	if m == nil {
		return false
	}
	for name := range m.Scripts {
		if containsAny(strings.ToLower(name), BuildScriptFragments) {
			return true
		}
	}
	return false
}

// EmptyFileStructure 请求失败时使用的兜底值
func EmptyFileStructure() domain.FileStructureSignal {
	return domain.FileStructureSignal{StaticFileNames: []string{}}
}

// EvaluateFileStructure 根据根目录条目名和 manifest 计算文件结构信号
// manifest 为 nil 表示仓库没有 package.json 或无法解析
func EvaluateFileStructure(entries []string, manifest *Manifest) domain.FileStructureSignal {
	signal := EmptyFileStructure()
	ind := &signal.Indicators

	present := make(map[string]bool, len(entries))
	for _, name := range entries {
		lower := strings.ToLower(name)
		present[lower] = true

		matched := true
		switch lower {
		case "index.html":
			ind.HasIndexHTML = true
		case "public":
			ind.HasPublicDir = true
		case "dist":
			ind.HasDistDir = true
		case "out":
			ind.HasOutDir = true
		case "next.config.js", "next.config.mjs", "next.config.ts":
			ind.HasNextLikeConfig = true
		case "vite.config.js", "vite.config.mjs", "vite.config.ts":
			ind.HasViteLikeConfig = true
		case "vue.config.js", "vue.config.ts":
			ind.HasVueLikeConfig = true
		default:
			matched = false
		}
		if matched {
			signal.StaticFileNames = append(signal.StaticFileNames, name)
		}
	}
	ind.HasReactLikeLayout = present["src"] && present["package.json"] && ind.HasPublicDir

	// 一票否决：有后端依赖就不再看任何正向指标
	if deps := manifest.BackendDependencies(); len(deps) > 0 {
		signal.BackendVeto = true
		signal.BackendDeps = deps
		signal.IsStaticProject = false
		signal.Confidence = 0
		return signal
	}

	confidence := 0.0
	if ind.HasIndexHTML {
		confidence += 0.4
		signal.IsStaticProject = true
	}
	if ind.HasPublicDir || ind.HasDistDir || ind.HasOutDir {
		confidence += 0.3
		signal.IsStaticProject = true
	}
	if ind.HasNextLikeConfig || ind.HasViteLikeConfig {
		confidence += 0.2
		signal.IsStaticProject = true
	}
	if manifest.HasBuildScript() {
		confidence += 0.1
	}
	signal.Confidence = domain.Clamp01(confidence)
	return signal
}
