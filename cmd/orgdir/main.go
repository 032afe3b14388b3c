// Command orgdir loads the organization directory from the content API and
// serves people search over HTTP.
package main

func main() {
	Execute()
}
