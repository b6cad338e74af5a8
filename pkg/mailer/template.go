package mailer

import "strings"

const emailTemplate = `<!DOCTYPE html>
<html>
  <body style="font-family: Helvetica, Arial, sans-serif; color: #0f1419;">
    <h2>{{title}}</h2>
    <p>{{content}}</p>
    <p>
      <a href="{{link}}"
         style="display: inline-block; padding: 10px 24px; background: #1d9bf0; color: #ffffff; border-radius: 20px; text-decoration: none;">
        {{link}}
      </a>
    </p>
    <p>If you did not request this, you can safely ignore this email.</p>
  </body>
</html>`

func renderTemplate(title, content, link string) string {
	return strings.NewReplacer(
		"{{title}}", title,
		"{{content}}", content,
		"{{link}}", link,
	).Replace(emailTemplate)
}
