package email

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var supportedLocales = []language.Tag{
	language.Chinese,
	language.English,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// licenseTemplate holds the subject and markdown body for one locale.
type licenseTemplate struct {
	subject string
	body    string
}

var licenseTemplates = map[language.Tag]licenseTemplate{
	language.Chinese: {
		subject: "您的许可证激活码 - {{.Plan}}",
		body: `# 许可证激活码

尊敬的用户：

感谢您购买{{.Product}}。以下是您的激活码信息：

` + "`{{.Code}}`" + `

- **订阅计划：** {{.Plan}}
- **发放日期：** {{.IssuedDate}}
- **有效期至：** {{.ExpiryDate}}

请在应用中输入上述激活码完成激活。每个激活码可绑定的设备数量有限，请妥善保管，不要与他人分享。
{{if .SupportURL}}
如有疑问，请访问 [{{.SupportURL}}]({{.SupportURL}})。
{{end}}`,
	},
	language.English: {
		subject: "Your license activation code - {{.Plan}}",
		body: `# License activation code

Hello,

Thank you for purchasing {{.Product}}. Here is your activation code:

` + "`{{.Code}}`" + `

- **Plan:** {{.Plan}}
- **Issued:** {{.IssuedDate}}
- **Valid until:** {{.ExpiryDate}}

Enter the code in the application to activate it. Each code can be bound to a limited number of devices, so keep it private.
{{if .SupportURL}}
Need help? Visit [{{.SupportURL}}]({{.SupportURL}}).
{{end}}`,
	},
}

var perpetualLabels = map[language.Tag]string{
	language.Chinese: "永久有效",
	language.English: "Never expires",
}

// templateData is the view passed to the templates.
type templateData struct {
	Code       string
	Plan       string
	Product    string
	IssuedDate string
	ExpiryDate string
	SupportURL string
}

// matchLocale resolves a configured locale such as "zh-CN" or "en_US" to
// one of the supported template languages, defaulting to Chinese.
func matchLocale(locale string) language.Tag {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Chinese
	}
	_, index, _ := localeMatcher.Match(tag)
	return supportedLocales[index]
}

// displayPlan turns "pro_yearly" into "Pro Yearly" for the given locale.
func displayPlan(planID string, tag language.Tag) string {
	words := strings.FieldsFunc(planID, func(r rune) bool { return r == '_' || r == '-' })
	if len(words) == 0 {
		return planID
	}
	return cases.Title(tag).String(strings.Join(words, " "))
}

func renderTemplate(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}
