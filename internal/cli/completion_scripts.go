package cli

var completionScripts = map[string]string{
	"bash": bashCompletionScript,
	"zsh":  zshCompletionScript,
	"fish": fishCompletionScript,
}

const bashCompletionScript = `# bash completion for cmdconsole
_cmdconsole_completion() {
  local cur prev first words
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"
  prev="${COMP_WORDS[COMP_CWORD-1]}"

  if [[ ${COMP_CWORD} -eq 1 ]]; then
    words="$(cmdconsole __complete commands 2>/dev/null)"
    words="$words"$'\n'"--help"$'\n'"-h"$'\n'"--version"$'\n'"-V"$'\n'"--json"$'\n'"--output"$'\n'"--config"
    COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    return 0
  fi

  case "$prev" in
    --action)
      COMPREPLY=( $(compgen -W "$(cmdconsole __complete actions 2>/dev/null)" -- "$cur") )
      return 0
      ;;
    --status)
      COMPREPLY=( $(compgen -W "$(cmdconsole __complete statuses 2>/dev/null)" -- "$cur") )
      return 0
      ;;
    --output|-o)
      COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
      return 0
      ;;
  esac

  first="${COMP_WORDS[1]}"
  case "$first" in
    completion)
      COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") )
      ;;
    run)
      COMPREPLY=( $(compgen -W "--by --fallback --json --output" -- "$cur") )
      ;;
    exec)
      COMPREPLY=( $(compgen -W "--action --payload --asset --task --by --json --output" -- "$cur") )
      ;;
    preview)
      if [[ ${COMP_CWORD} -eq 2 ]]; then
        COMPREPLY=( $(compgen -W "run exec" -- "$cur") )
      else
        COMPREPLY=( $(compgen -W "--action --payload --asset --task --by --fallback --json --output" -- "$cur") )
      fi
      ;;
    logs)
      COMPREPLY=( $(compgen -W "--status --search --json --output" -- "$cur") )
      ;;
    config)
      if [[ ${COMP_CWORD} -eq 2 ]]; then
        COMPREPLY=( $(compgen -W "show set path" -- "$cur") )
      elif [[ ${COMP_CWORD} -eq 3 && "${COMP_WORDS[2]}" == "set" ]]; then
        COMPREPLY=( $(compgen -W "$(cmdconsole __complete config-keys 2>/dev/null)" -- "$cur") )
      fi
      ;;
    *)
      COMPREPLY=( $(compgen -W "--json --output --help" -- "$cur") )
      ;;
  esac
}
complete -F _cmdconsole_completion cmdconsole
`

const zshCompletionScript = `#compdef cmdconsole
_cmdconsole_completion() {
  local -a commands flags

  if (( CURRENT == 2 )); then
    commands=(${(f)"$(cmdconsole __complete commands 2>/dev/null)"})
    commands+=(--help -h --version -V --json --output --config)
    _describe 'cmdconsole command' commands
    return
  fi

  case "${words[CURRENT-1]}" in
    --action)
      _values 'action' ${(f)"$(cmdconsole __complete actions 2>/dev/null)"}
      return
      ;;
    --status)
      _values 'status' ${(f)"$(cmdconsole __complete statuses 2>/dev/null)"}
      return
      ;;
    --output|-o)
      _values 'format' text json yaml
      return
      ;;
  esac

  case "${words[2]}" in
    completion)
      _values 'shell' bash zsh fish
      ;;
    run)
      flags=(--by --fallback --json --output)
      _describe 'run flag' flags
      ;;
    exec)
      flags=(--action --payload --asset --task --by --json --output)
      _describe 'exec flag' flags
      ;;
    preview)
      if (( CURRENT == 3 )); then
        _values 'mode' run exec
      else
        flags=(--action --payload --asset --task --by --fallback --json --output)
        _describe 'preview flag' flags
      fi
      ;;
    logs)
      flags=(--status --search --json --output)
      _describe 'logs flag' flags
      ;;
    config)
      if (( CURRENT == 3 )); then
        _values 'config command' show set path
      elif (( CURRENT == 4 )) && [[ "${words[3]}" == "set" ]]; then
        _values 'key' ${(f)"$(cmdconsole __complete config-keys 2>/dev/null)"}
      fi
      ;;
    *)
      flags=(--json --output --help)
      _describe 'flag' flags
      ;;
  esac
}
compdef _cmdconsole_completion cmdconsole
`

const fishCompletionScript = `function __cmdconsole_words
    commandline -opc
end

function __cmdconsole_command_is
    set -l w (__cmdconsole_words)
    test (count $w) -ge 2; and test "$w[2]" = $argv[1]
end

complete -c cmdconsole -f
complete -c cmdconsole -n 'test (count (__cmdconsole_words)) -eq 1' -a "(cmdconsole __complete commands 2>/dev/null)"
complete -c cmdconsole -n 'test (count (__cmdconsole_words)) -eq 1' -l config -r -F
complete -c cmdconsole -l json
complete -c cmdconsole -s o -l output -x -a "text json yaml"
complete -c cmdconsole -n '__cmdconsole_command_is completion' -a "bash zsh fish"
complete -c cmdconsole -n '__cmdconsole_command_is run; or __cmdconsole_command_is exec; or __cmdconsole_command_is preview' -l by -x
complete -c cmdconsole -n '__cmdconsole_command_is run; or __cmdconsole_command_is preview' -l fallback -x
complete -c cmdconsole -n '__cmdconsole_command_is exec; or __cmdconsole_command_is preview' -l action -x -a "(cmdconsole __complete actions 2>/dev/null)"
complete -c cmdconsole -n '__cmdconsole_command_is exec; or __cmdconsole_command_is preview' -l payload -x
complete -c cmdconsole -n '__cmdconsole_command_is exec; or __cmdconsole_command_is preview' -l asset -x
complete -c cmdconsole -n '__cmdconsole_command_is exec; or __cmdconsole_command_is preview' -l task -x
complete -c cmdconsole -n 'set -l w (__cmdconsole_words); test (count $w) -eq 2; and test "$w[2]" = preview' -a "run exec"
complete -c cmdconsole -n '__cmdconsole_command_is logs' -l status -x -a "(cmdconsole __complete statuses 2>/dev/null)"
complete -c cmdconsole -n '__cmdconsole_command_is logs' -l search -x
complete -c cmdconsole -n 'set -l w (__cmdconsole_words); test (count $w) -eq 2; and test "$w[2]" = config' -a "show set path"
complete -c cmdconsole -n 'set -l w (__cmdconsole_words); test (count $w) -eq 3; and test "$w[2]" = config; and test "$w[3]" = set' -a "(cmdconsole __complete config-keys 2>/dev/null)"
`
