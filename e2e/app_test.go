package e2e

import (
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login(email, password string) {
	err := suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	err = suite.page.Locator("input[name=email]").Fill(email)
	require.NoError(suite.T(), err, "failed to fill email")

	err = suite.page.Locator("input[name=password]").Fill(password)
	require.NoError(suite.T(), err, "failed to fill password")

	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")
}

func (suite *E2ETestSuite) TestAdminLogin() {
	suite.login("admin@example.com", "testpass123")

	err := suite.expect.Locator(suite.page.Locator(".dashboard-screen")).ToBeVisible()
	require.NoError(suite.T(), err, "did not reach the dashboard after login")

	err = suite.expect.Locator(suite.page.Locator(".welcome")).ToContainText("Welcome, Admin!")
	require.NoError(suite.T(), err, "welcome header mismatch")
}

func (suite *E2ETestSuite) TestInvalidLogin() {
	suite.login("admin@example.com", "wrong-password")

	err := suite.expect.Locator(suite.page.Locator(".error")).ToContainText("Invalid email or password.")
	require.NoError(suite.T(), err, "expected invalid-credentials message")
}

func (suite *E2ETestSuite) TestSignupFlowWithBMI() {
	// Each run gets a fresh email so the test is re-runnable against one db
	email := fmt.Sprintf("user%d@example.com", time.Now().UnixNano())

	_, err := suite.page.Goto(appURL + "/signup")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator(".signup-form")).ToBeVisible()
	require.NoError(suite.T(), err, "signup form not visible")

	require.NoError(suite.T(), suite.page.Locator("input[name=name]").Fill("Test Person"))
	require.NoError(suite.T(), suite.page.Locator("input[name=email]").Fill(email))
	require.NoError(suite.T(), suite.page.Locator("input[name=password]").Fill("secret123"))
	require.NoError(suite.T(), suite.page.Locator("input[name=age]").Fill("30"))
	require.NoError(suite.T(), suite.page.Locator("input[name=height]").Fill("180"))
	require.NoError(suite.T(), suite.page.Locator("input[name=weight]").Fill("81"))

	err = suite.page.Locator(".signup-btn").Click()
	require.NoError(suite.T(), err, "failed to submit signup")

	err = suite.expect.Locator(suite.page.Locator(".welcome")).ToContainText("Welcome, Test Person!")
	require.NoError(suite.T(), err, "did not land on dashboard after signup")

	// BMI for 180cm / 81kg
	err = suite.expect.Locator(suite.page.Locator(".bmi-box")).ToContainText("25.00")
	require.NoError(suite.T(), err, "BMI value mismatch")
}

func (suite *E2ETestSuite) TestConsultationPage() {
	suite.login("admin@example.com", "testpass123")

	err := suite.expect.Locator(suite.page.Locator(".dashboard-screen")).ToBeVisible()
	require.NoError(suite.T(), err)

	_, err = suite.page.Goto(appURL + "/consultation?condition=obesity")
	require.NoError(suite.T(), err)

	err = suite.expect.Locator(suite.page.Locator(".condition-recs")).ToContainText("Wegovy, Ozempic, Mounjaro, Phentermine")
	require.NoError(suite.T(), err, "medication recommendations missing")

	// The stubbed trends page feeds the trend table
	err = suite.expect.Locator(suite.page.Locator(".trend-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "trend item count mismatch")
}

func (suite *E2ETestSuite) TestProtectedPageRedirectsToLogin() {
	_, err := suite.page.Goto(appURL + "/dashboard")
	require.NoError(suite.T(), err)

	// Without a session the dashboard must bounce to the login form
	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "expected redirect to login")
}

func (suite *E2ETestSuite) TestLogout() {
	suite.login("admin@example.com", "testpass123")

	err := suite.expect.Locator(suite.page.Locator(".dashboard-screen")).ToBeVisible()
	require.NoError(suite.T(), err)

	err = suite.page.Locator(".logout-btn").Click()
	require.NoError(suite.T(), err, "failed to click logout")

	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "did not return to login after logout")

	// Back button / direct navigation must not restore the session
	_, err = suite.page.Goto(appURL + "/dashboard")
	require.NoError(suite.T(), err)
	err = suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "session survived logout")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
