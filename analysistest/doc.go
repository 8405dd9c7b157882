// Package analysistest provides test doubles and a Go testing harness for
// the analyzer.
//
// MockProvider scripts provider replies without any network. NewChatServer
// and NewMessagesServer start httptest servers that speak the
// OpenAI-compatible chat completions format and the Anthropic Messages
// format, so adapters can be exercised end to end.
//
// The Harness wraps *testing.T around anything that can analyze text (in
// practice a *registry.Registry). Each case runs as a subtest:
//
//	func TestHeadlines(t *testing.T) {
//	    h := analysistest.New(t, analysistest.WithAnalyzer(reg), analysistest.WithProvider("Claude"))
//	    h.Run("tesla", func(tc *analysistest.TestCase) {
//	        tc.Analyze("Sentiment Analysis", "Tesla Reports Record Q4 Earnings")
//	        tc.AssertOK()
//	        tc.AssertDominant("positive")
//	        tc.AssertSentiment("positive", analysistest.Above(50))
//	    })
//	}
package analysistest
