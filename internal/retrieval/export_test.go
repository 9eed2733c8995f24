package retrieval

var SearchStatement = searchStatement
