package email

import (
	"fmt"
	"html"

	"github.com/shopspring/decimal"
)

// WelcomeSubject is the subject line of the registration welcome mail
const WelcomeSubject = "Welcome to Smart Expense Tracker!"

// WelcomeBody renders the welcome mail sent after user registration
func WelcomeBody(username string) string {
	if username == "" {
		username = "User"
	}
	return fmt.Sprintf(`<html>
    <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
        <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
            <h2 style="color: #4CAF50;">Welcome to Smart Expense Tracker!</h2>
            <p>Hi %s,</p>
            <p>Thank you for registering with Smart Expense Tracker. We're excited to help you manage your expenses efficiently!</p>
            <p>Here's what you can do:</p>
            <ul>
                <li>Track your daily expenses</li>
                <li>Categorize spending</li>
                <li>Set budgets and get alerts</li>
                <li>View detailed analytics and trends</li>
            </ul>
            <p>Get started by adding your first expense!</p>
            <p>Best regards,<br>Smart Expense Tracker Team</p>
        </div>
    </body>
</html>`, html.EscapeString(username))
}

// BudgetAlertSubject is the subject line of the budget exceeded mail
const BudgetAlertSubject = "Budget Alert - Smart Expense Tracker"

// BudgetAlertBody renders the mail sent when spending exceeds a budget
func BudgetAlertBody(budgetAmount, spentAmount decimal.Decimal, category string) string {
	if category == "" {
		category = "Overall"
	}
	percentage := decimal.Zero
	if budgetAmount.IsPositive() {
		percentage = spentAmount.Div(budgetAmount).Mul(decimal.NewFromInt(100))
	}
	return fmt.Sprintf(`<html>
    <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
        <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
            <h2 style="color: #f44336;">Budget Alert!</h2>
            <p>Your %s budget has been exceeded!</p>
            <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
                <p><strong>Budget Amount:</strong> $%s</p>
                <p><strong>Spent Amount:</strong> $%s</p>
                <p><strong>Percentage Used:</strong> %s%%</p>
                <p><strong>Over Budget:</strong> $%s</p>
            </div>
            <p>Consider reviewing your expenses to stay within budget.</p>
            <p>Best regards,<br>Smart Expense Tracker Team</p>
        </div>
    </body>
</html>`,
		html.EscapeString(category),
		budgetAmount.StringFixed(2),
		spentAmount.StringFixed(2),
		percentage.Round(1).String(),
		spentAmount.Sub(budgetAmount).StringFixed(2),
	)
}
