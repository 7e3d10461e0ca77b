package repository

var TranslateError = translateError
