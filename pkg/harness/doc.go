// Package harness runs Go tests against a browser.
//
// A Harness is built once per go test process, usually from TestMain, out of
// the resolved configuration and a browser factory. Each test then asks it
// for a browser:
//
//	var h *harness.Harness
//	var opts = options.Register(flag.CommandLine)
//
//	func TestMain(m *testing.M) {
//	    os.Exit(harness.Main(m, opts, func(hh *harness.Harness) { h = hh }))
//	}
//
//	func TestLogin(t *testing.T) {
//	    h.Browser(t, func(tc *report.TestContext, d browser.Driver) {
//	        if err := d.Navigate(tc.Config.BaseURL()+"/login", browser.NavigateOptions{}); err != nil {
//	            t.Fatal(err)
//	        }
//	    })
//	}
//
// Every test runs in three phases. Setup acquires the browser, call runs the
// test body, teardown releases the browser. Each phase outcome is sent to the
// registered listeners. The call outcome is sent while the browser is still
// open so a failing test can be photographed before teardown.
package harness
