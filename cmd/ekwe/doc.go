// Command ekwe keeps a lexical dataset's audio recordings in sync with a
// GitHub repository's issue tracker: reconcile opens one request issue per
// word missing audio, harvest collects uploaded recordings from resolved
// issues back into the dataset.
package main
