// Command ragent runs the retrieval-augmented generation and agent
// service.
//
//	ragent serve                       start the server
//	ragent serve --config config.yaml  start with a config file
//	ragent version                     print version info
//	ragent health                      probe a running server
package main
