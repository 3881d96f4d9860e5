package scoring

import (
	"strings"

	"github-static-scout/internal/domain"
)

const (
	phraseReadmeStatic  = "README 显示为静态项目"
	phraseFileStatic    = "文件结构显示为静态项目"
	phraseHomepage      = "配置了项目主页"
	phrasePreviewFound  = "发现预览地址"
	phraseDeployButton  = "包含部署按钮"
	phraseBackendVeto   = "文件结构检测到后端依赖"
	phraseNotStatic     = "非静态部署项目"
	summarySeparator    = "，"
	weightReadme        = 0.4
	weightFileStructure = 0.4
	weightAboutHomepage = 0.2
)

// Combine 融合三路信号，纯函数
//
// isStaticDeploy 使用 OR：README 与文件结构任一判定为静态即为静态。
// 文件结构的后端否决不会压过 README 的判定，这种情况会在 summary 中标注。
func Combine(readme domain.ReadmeSignal, about domain.AboutSignal, fs domain.FileStructureSignal) domain.CombinedAnalysis {
	urls := append([]string{}, readme.PreviewURLs...)
	if about.Homepage != nil {
		urls = append(urls, *about.Homepage)
	}
	urls = dedupe(urls)

	homepage := 0.0
	if about.HasHomepage {
		homepage = 1
	}
	combined := domain.Clamp01(weightReadme*readme.Confidence + weightFileStructure*fs.Confidence + weightAboutHomepage*homepage)

	isStatic := readme.IsStaticDeploy || fs.IsStaticProject
	hasPreview := readme.HasPreviewURL || about.HasHomepage || len(urls) > 0

	var phrases []string
	if readme.IsStaticDeploy {
		phrases = append(phrases, phraseReadmeStatic)
	}
	if fs.IsStaticProject {
		phrases = append(phrases, phraseFileStatic)
	}
	if about.HasHomepage {
		phrases = append(phrases, phraseHomepage)
	}
	if len(urls) > 0 {
		phrases = append(phrases, phrasePreviewFound)
	}
	if readme.HasDeployButtons {
		phrases = append(phrases, phraseDeployButton)
	}
	summary := phraseNotStatic
	if len(phrases) > 0 {
		if readme.IsStaticDeploy && fs.BackendVeto {
			phrases = append(phrases, phraseBackendVeto)
		}
		summary = strings.Join(phrases, summarySeparator)
	}

	return domain.CombinedAnalysis{
		Readme:              readme,
		About:               about,
		FileStructure:       fs,
		CombinedPreviewURLs: urls,
		CombinedConfidence:  combined,
		FinalAssessment: domain.FinalAssessment{
			IsStaticDeploy:   isStatic,
			HasPreviewURL:    hasPreview,
			HasDeployButtons: readme.HasDeployButtons,
			DeployPlatforms:  domain.NonNil(readme.DeployPlatforms),
			Confidence:       combined,
			Summary:          summary,
		},
	}
}

// IsStaticOnlyCandidate "只看可直接运行的项目" 开关的判定规则
func IsStaticOnlyCandidate(result *domain.RepoResult) bool {
	if result == nil || result.ComprehensiveAnalysis == nil {
		return false
	}
	final := result.ComprehensiveAnalysis.FinalAssessment
	if !final.IsStaticDeploy || final.Confidence <= StaticOnlyMinConfidence {
		return false
	}
	if containsAny(strings.ToLower(result.Description), StaticOnlyBackendTerms) {
		return false
	}
	for _, lang := range StaticOnlyBackendLanguages {
		if result.Language == lang {
			return false
		}
	}
	return true
}
