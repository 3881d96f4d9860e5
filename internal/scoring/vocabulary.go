package scoring

// 以下词表是判定逻辑的一部分，修改会直接改变打分结果

// ModelPromptLimit 发送给模型的 README 最大字符数
const ModelPromptLimit = 4000

// StaticDeployKeywords 静态项目词表：项目类型 / 技术栈 / 部署相关 / 运行相关
var StaticDeployKeywords = []string{
	// 项目类型
	"blog", "portfolio", "gallery", "game", "demo", "showcase", "website",
	"personal website", "作品集", "博客", "画廊", "游戏", "展示", "网站",
	// 技术栈
	"html", "css", "javascript", "react", "vue", "angular", "svelte",
	"next.js", "nuxt", "gatsby", "astro", "sveltekit",
	// 部署相关
	"static", "spa", "frontend", "client-side", "browser",
	// 运行相关
	"npm start", "yarn dev", "npm run dev", "serve", "localhost",
	"可以直接运行", "直接部署", "一键部署",
}

// BackendKeywords 出现任意一个即认为项目依赖后端服务
var BackendKeywords = []string{
	"api", "server", "backend", "database",
	"mysql", "postgresql", "postgres", "mongodb", "redis", "sqlite",
	"express", "nestjs", "django", "flask", "fastapi", "spring boot", "laravel", "ruby on rails",
	"prisma", "sequelize", "mongoose", "typeorm",
	"passport.js", "next-auth", "jwt", "oauth",
	"socket.io", "websocket", "graphql",
	"后端", "数据库", "服务器",
}

// PreviewURLKeywords 预览地址相关词
var PreviewURLKeywords = []string{
	"live demo", "preview", "demo", "visit", "access", "online",
	"vercel.app", "netlify.app", "github.io", "预览", "访问", "在线",
	"try it", "see it live", "check it out", "体验", "试用",
}

// DeployButtonKeywords 部署按钮相关词
var DeployButtonKeywords = []string{
	"deploy", "vercel", "netlify", "github pages", "部署", "一键部署",
	"deploy button", "one-click deploy", "一键部署按钮",
	"vercel deploy", "netlify deploy", "github pages deploy",
}

// PreviewURLFragments 预览地址必须包含的片段之一
var PreviewURLFragments = []string{
	"vercel.app", "netlify.app", "github.io", "demo", "preview",
}

// DeployPlatform 平台名 + 判定用的关键词
type DeployPlatform struct {
	Name    string
	Keyword string
}

// DeployPlatforms 按顺序检测
var DeployPlatforms = []DeployPlatform{
	{Name: "Vercel", Keyword: "vercel"},
	{Name: "Netlify", Keyword: "netlify"},
	{Name: "GitHub Pages", Keyword: "github pages"},
}

// StaticTopicFragments topic 中包含任意片段即视为静态相关
var StaticTopicFragments = []string{
	"static", "website", "portfolio", "blog", "frontend", "spa",
	"github-pages", "gh-pages", "html", "css", "react", "vue", "svelte", "angular",
	"nextjs", "next-js", "gatsby", "hugo", "jekyll", "astro", "vite",
	"game", "demo", "landing-page", "gallery", "personal-website",
}

// BackendDependencies package.json 中出现即一票否决
var BackendDependencies = []string{
	// web 框架
	"express", "koa", "fastify", "@nestjs/core", "@hapi/hapi", "hapi", "restify",
	// ORM
	"mongoose", "sequelize", "typeorm", "prisma", "@prisma/client", "knex",
	// 数据库驱动
	"pg", "mysql", "mysql2", "mongodb", "redis", "ioredis", "sqlite3", "better-sqlite3",
	// 认证 / 会话
	"passport", "express-session", "jsonwebtoken", "bcrypt", "next-auth",
	// 实时 / GraphQL
	"socket.io", "ws", "apollo-server", "@apollo/server", "graphql-yoga",
	"firebase-admin",
}

// BuildScriptFragments 脚本名包含这些片段视为有静态产物构建
var BuildScriptFragments = []string{"build", "export", "generate"}

// StaticOnlyBackendTerms 仅看静态项目时，描述里出现这些词直接排除
var StaticOnlyBackendTerms = []string{
	"api", "server", "backend", "database", "mysql", "postgresql", "mongodb", "redis",
}

// StaticOnlyBackendLanguages 仅看静态项目时排除的主语言
var StaticOnlyBackendLanguages = []string{"Go", "Java", "C#", "Python", "PHP", "Ruby"}

// StaticOnlyMinConfidence 仅看静态项目时的最低置信度 (严格大于)
const StaticOnlyMinConfidence = 0.3
