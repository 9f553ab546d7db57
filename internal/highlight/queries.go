package highlight

const goHighlightQuery = `
((comment) @comment)
((interpreted_string_literal) @string)
((raw_string_literal) @string)
((rune_literal) @string)
((escape_sequence) @string)
((int_literal) @number)
((float_literal) @number)
((imaginary_literal) @number)
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
((nil) @constant)
((true) @constant)
((false) @constant)
((iota) @constant)
((identifier) @type (#match? @type "^(bool|byte|rune|string|int|int8|int16|int32|int64|uint|uint8|uint16|uint32|uint64|uintptr|float32|float64|complex64|complex128|error|any|comparable)$"))
((identifier) @builtin (#match? @builtin "^(append|cap|clear|close|complex|copy|delete|imag|len|make|max|min|new|panic|print|println|real|recover)$"))
((const_spec name: (identifier) @constant))
((type_spec name: (type_identifier) @type))
((type_identifier) @type)
((package_identifier) @type)
((function_declaration name: (identifier) @function))
((method_declaration name: (field_identifier) @function))
((call_expression function: (identifier) @function))
((call_expression function: (selector_expression field: (field_identifier) @function)))
((field_identifier) @field)
((identifier) @variable)
[
  "+" "-" "*" "/" "%" "==" "!=" "<=" ">=" "<" ">" "=" ":=" "&&" "||"
  "!" "&" "|" "^" "<<" ">>" "&^" "+=" "-=" "*=" "/=" "<-" "++" "--" "..."
] @operator
[
  "." "," ";" ":" "(" ")" "[" "]" "{" "}"
] @punctuation
`

const yamlHighlightQuery = `
((comment) @comment)
((string_scalar) @string)
((double_quote_scalar) @string)
((single_quote_scalar) @string)
((integer_scalar) @number)
((float_scalar) @number)
((null_scalar) @constant)
((boolean_scalar) @constant)
((block_mapping_pair key: (_) @field))
((flow_pair key: (_) @field))
((anchor_name) @keyword)
((alias_name) @keyword)
((tag) @type)
["," ":" "-" "[" "]" "{" "}" ">" "|" "*" "&"] @punctuation
`

const tomlHighlightQuery = `
((comment) @comment)
((string) @string)
((integer) @number)
((float) @number)
((boolean) @constant)
((local_date) @string)
((local_time) @string)
((local_date_time) @string)
((offset_date_time) @string)
((bare_key) @field)
((quoted_key) @field)
((table (bare_key) @type))
((table (quoted_key) @type))
((table (dotted_key) @type))
["=" "." "," "[" "]" "[[" "]]" "{" "}"] @punctuation
`

const bashHighlightQuery = `
((comment) @comment)
((string) @string)
((raw_string) @string)
((heredoc_body) @string)
((number) @number)
((variable_name) @variable)
((command_name) @function)
((function_definition name: (word) @function))
[
  "if" "then" "else" "elif" "fi" "case" "esac" "for" "while" "until"
  "do" "done" "in" "function" "select" "return" "exit" "break" "continue"
  "local" "export" "readonly" "declare" "typeset" "unset"
] @keyword
["$" "${" "}" "(" ")" "((" "))" "[" "]" "[[" "]]" ";" ";;" "&&" "||" "|" "&" "<" ">" ">>" "<<" "<<<"] @operator
`

const markdownHighlightQuery = `
(atx_heading) @keyword
(setext_heading) @keyword
(thematic_break) @comment
(block_quote_marker) @comment
(list_marker_plus) @keyword
(list_marker_minus) @keyword
(list_marker_star) @keyword
(list_marker_dot) @keyword
(task_list_marker_checked) @constant
(task_list_marker_unchecked) @constant
(fenced_code_block_delimiter) @string
(indented_code_block) @string
(info_string) @comment
(language) @type
(link_reference_definition) @function
(pipe_table_delimiter_row) @comment
`
