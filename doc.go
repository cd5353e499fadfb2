// Package gridkit holds the building blocks shared by browser and API test
// suites: bounded retries, credential tokens, random identifiers, free ports,
// capability lists and the wait and selector tables.
//
// The browser helpers live in the webdriver (remote Selenium grid) and chrome
// (chromedp) packages, the HTTP helper in api and the verification script
// runner in artifacts.
package gridkit
