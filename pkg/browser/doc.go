// Package browser provides browser sessions for end-to-end tests through
// Playwright.
//
// A Factory turns the effective configuration of a test run into a live
// Driver. Each Driver belongs to exactly one test and must be released with
// Quit when the test ends, whatever its outcome.
//
// # Browser names
//
// The browserName setting selects the engine:
//
//   - chrome, chromium: Chromium
//   - edge, msedge: Chromium on the msedge channel
//   - firefox: Firefox
//   - webkit, safari: WebKit
//
// # Example Usage
//
//	factory := browser.NewPlaywrightFactory(browser.SessionOptions{Headless: true})
//	if err := factory.Initialize(); err != nil {
//	    return err
//	}
//	defer factory.Shutdown()
//
//	driver, err := factory.NewDriver(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer driver.Quit()
//
//	err = driver.Navigate(cfg.BaseURL(), browser.NavigateOptions{WaitUntil: "load"})
package browser
