package domain

import "math"

// ReadmeSignal README 分析结果，每个仓库只生成一次
type ReadmeSignal struct {
	IsStaticDeploy   bool     `json:"isStaticDeploy"`
	HasPreviewURL    bool     `json:"hasPreviewUrl"`
	HasDeployButtons bool     `json:"hasDeployButtons"`
	PreviewURLs      []string `json:"previewUrls"`
	DeployPlatforms  []string `json:"deployPlatforms"`
	Confidence       float64  `json:"confidence"`
	Summary          string   `json:"summary"`
}

// AboutSignal 仓库 "About" 元数据分析 (homepage / topics)
type AboutSignal struct {
	Homepage        *string  `json:"homepage"`
	Topics          []string `json:"topics"`
	HasStaticTopics bool     `json:"hasStaticTopics"`
	HasHomepage     bool     `json:"hasHomepage"`
}

// FileIndicators 根目录文件结构标记
type FileIndicators struct {
	HasIndexHTML       bool `json:"hasIndexHtml"`
	HasPublicDir       bool `json:"hasPublicDir"`
	HasDistDir         bool `json:"hasDistDir"`
	HasOutDir          bool `json:"hasOutDir"`
	HasNextLikeConfig  bool `json:"hasNextConfig"`
	HasViteLikeConfig  bool `json:"hasViteConfig"`
	HasReactLikeLayout bool `json:"hasReactLayout"`
	HasVueLikeConfig   bool `json:"hasVueConfig"`
}

// FileStructureSignal 文件结构分析结果
// 检测到后端依赖时 IsStaticProject 强制为 false、Confidence 强制为 0
type FileStructureSignal struct {
	Indicators      FileIndicators `json:"indicators"`
	StaticFileNames []string       `json:"staticFiles"`
	IsStaticProject bool           `json:"isStaticProject"`
	Confidence      float64        `json:"confidence"`
	BackendVeto     bool           `json:"backendVeto"`
	BackendDeps     []string       `json:"backendDependencies,omitempty"`
}

// FinalAssessment 综合结论
type FinalAssessment struct {
	IsStaticDeploy   bool     `json:"isStaticDeploy"`
	HasPreviewURL    bool     `json:"hasPreviewUrl"`
	HasDeployButtons bool     `json:"hasDeployButtons"`
	DeployPlatforms  []string `json:"deployPlatforms"`
	Confidence       float64  `json:"confidence"`
	Summary          string   `json:"summary"`
}

// CombinedAnalysis 三路信号融合后的结果，构建后不再修改
type CombinedAnalysis struct {
	Readme              ReadmeSignal        `json:"readme"`
	About               AboutSignal         `json:"about"`
	FileStructure       FileStructureSignal `json:"fileStructure"`
	CombinedPreviewURLs []string            `json:"combinedPreviewUrls"`
	CombinedConfidence  float64             `json:"combinedConfidence"`
	FinalAssessment     FinalAssessment     `json:"finalAssessment"`
}

// FilterRuleSet 由用户的自然语言筛选需求解析出的规则
type FilterRuleSet struct {
	Include      []string `json:"include"`
	Exclude      []string `json:"exclude"`
	Prioritize   []string `json:"prioritize"`
	Requirements []string `json:"requirements"`
	Preferences  []string `json:"preferences"`
}

// IsEmpty 空规则集等价于 "全部接受"
func (r FilterRuleSet) IsEmpty() bool {
	return len(r.Include) == 0 && len(r.Exclude) == 0 && len(r.Prioritize) == 0 &&
		len(r.Requirements) == 0 && len(r.Preferences) == 0
}

// Normalize 把 nil 切片换成空切片，保证 JSON 输出为 []
func (r FilterRuleSet) Normalize() FilterRuleSet {
	return FilterRuleSet{
		Include:      NonNil(r.Include),
		Exclude:      NonNil(r.Exclude),
		Prioritize:   NonNil(r.Prioritize),
		Requirements: NonNil(r.Requirements),
		Preferences:  NonNil(r.Preferences),
	}
}

// AIFilterVerdict 单个仓库对规则集的评估结果
type AIFilterVerdict struct {
	Matches    bool     `json:"matches"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Score      float64  `json:"score"`
	Summary    string   `json:"summary"`
}

// Clamp01 把分数限制在 [0,1]，NaN 归零
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NonNil 把 nil 切片换成空切片
func NonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AnalysisSnapshot 缓存中的一条记录：综合分析 + 截断后的 README 原文 (筛选时使用)
type AnalysisSnapshot struct {
	Analysis CombinedAnalysis `json:"analysis"`
	Readme   string           `json:"readme"`
}
