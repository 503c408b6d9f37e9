package ui

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// guideMarkdown is the usage guide shown on the landing page and at /guide.
const guideMarkdown = `# 使用说明

## 数据上传
- 支持 CSV 和 Excel（.xlsx / .xls）格式的传感器导出文件
- 文件首行必须是字段名，默认上限 50MB
- 上传后自动识别时间戳列和异常标记列

## 支持的字段
| 字段 | 说明 |
| --- | --- |
| 时间 / timestamp | 时间戳列，按列名自动识别 |
| 用户名 | 按用户筛选，选"全部"时不过滤 |
| MAC地址 | 设备标识，悬浮提示中展示 |
| 左右耳 | 佩戴侧筛选 |
| 是否入耳 | 佩戴状态筛选与概览计数 |
| DIF百分比 / RAW百分比 | 传感器百分比数值，折线图数据源 |
| 是否异常 | 异常标记列，列名含"异常"或"abnormal"即被识别 |

## 筛选
- 筛选顺序：是否入耳 → 用户名 → 左右耳 → 时间范围
- 时间范围为闭区间；结束时间精确到分钟时自动覆盖整分钟
- 数值大于 1000% 或无法解析的行不参与绘图和分页，但仍计入筛选统计和导出

## 图表
- 折线在异常标记行处断开，孤立异常点以独立散点显示
- 表格每页 30 行，图表绘制当前页数据
- 有时间戳列时横轴为时间，否则为数据序号

## 导出
- 导出当前筛选结果为 CSV，UTF-8 带 BOM，Excel 可直接打开
`

// guideHTML renders the usage guide markdown. The source is a compile-time
// constant, so the result is safe to mark as trusted HTML.
func guideHTML() template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.Render(p.Parse([]byte(guideMarkdown)), renderer))
}
